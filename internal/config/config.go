package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "FAIRSONORITY"

var ErrMissingAPIURL = errors.New("api.url is required")

type Configuration struct {
	API APIConfig
	// Storage holds the directory in which the session token persists between runs.
	Storage StorageConfig
	Log     LogConfig
	Backend BackendConfig
	// Debug, if true, lowers the log level to debug. The client then logs every dispatched action at trace level.
	Debug bool
}

type APIConfig struct {
	// URL is the base url of the backend.
	URL string
	// Timeout bounds every request to the backend. Zero means no timeout.
	Timeout time.Duration
}

type StorageConfig struct {
	Dir string
}

type LogConfig struct {
	Level string
}

// BackendConfig configures the development backend.
type BackendConfig struct {
	Addr string
	// Secret signs the access tokens issued by the development backend.
	Secret string
}

// Flags declares the command line flags overriding the configuration file.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fairsonority", pflag.ContinueOnError)
	fs.String("config", "", "path to the configuration file")
	fs.String("api.url", "", "base url of the backend")
	fs.Duration("api.timeout", 0, "timeout of backend requests, 0 for none")
	fs.String("storage.dir", "", "directory of the persisted session")
	fs.String("log.level", "", "log level")
	fs.String("backend.addr", "", "listen address of the development backend")
	fs.Bool("debug", false, "enable debug logging")
	return fs
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fairsonority")
	}
	return filepath.Join(os.TempDir(), "fairsonority")
}

// Load reads the configuration from, in increasing priority, defaults, the configuration file, environment
// variables prefixed with FAIRSONORITY_ and the flags in fs that were set. fs may be nil.
func Load(fs *pflag.FlagSet) (Configuration, error) {
	v := viper.New()

	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("storage.dir", defaultStorageDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("backend.addr", ":8081")
	v.SetDefault("backend.secret", "")
	v.SetDefault("debug", false)

	v.SetConfigType("toml")
	cfgPath := os.Getenv(EnvPrefix + "_CONFIG")
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			cfgPath = f.Value.String()
		}
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(defaultStorageDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows of.
	_ = v.BindEnv("api.url")

	if fs != nil {
		var err error
		fs.VisitAll(func(f *pflag.Flag) {
			if err == nil && f.Name != "config" {
				err = v.BindPFlag(f.Name, f)
			}
		})
		if err != nil {
			return Configuration{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgPath != "" {
			return Configuration{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return Configuration{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if v.GetBool("debug") && c.Log.Level == "info" {
		c.Log.Level = "debug"
	}
	return c, nil
}

// Validate checks the settings the client cannot run without.
func (c Configuration) Validate() error {
	if c.API.URL == "" {
		return ErrMissingAPIURL
	}
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url: %q is not an absolute url", c.API.URL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	return nil
}
