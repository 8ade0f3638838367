package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/app"
	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/client"
	"github.com/sidereusnuntius/fairsonority/internal/config"
	"github.com/sidereusnuntius/fairsonority/internal/session"
	"github.com/sidereusnuntius/fairsonority/internal/storage/filestore"
	"github.com/sidereusnuntius/fairsonority/internal/store"
)

const usage = `usage: fairsonority [flags] <command> [arguments]

commands:
  login <email> <password>
  logout
  whoami
  register [--role customer|artist] [--genres a,b] [--description text] <email> <password> <first name> <last name>
  orders
  update <order id> <status> [result url]
  artists
  order [--bpm n] [--genre a,b] [--date YYYY-MM-DD] <artist id> <comment>
  rate <artist id> <rating> [comment]

flags:
`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fs := config.Flags()
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}
	zerolog.SetGlobalLevel(logLevel(cfg))
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	fileStore, err := filestore.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.Dir).Msg("unable to open session storage")
	}
	sess, err := session.New(fileStore)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load session")
	}
	api, err := client.New(cfg.API.URL, &http.Client{Timeout: cfg.API.Timeout}, sess)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	a := app.New(cfg, sess, api)
	release, err := broadcast.Mount(a.Broadcaster, func(sc *broadcast.Scope) error {
		a.Chrome(sc, app.ChromeView{
			AppTitle: func(title string) {
				log.Debug().Str("title", title).Send()
			},
			DocumentTitle: windowTitle,
			Snackbar:      showSnackbar,
		})
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.Bootstrap(ctx); err != nil {
		log.Warn().Err(err).Msg("unable to restore the session")
	}

	if err := run(ctx, a, fs.Args()); err != nil {
		release()
		stop()
		log.Fatal().Err(err).Send()
	}
}

// logLevel returns the configured level. Debug mode goes down to trace, the level dispatched actions are
// logged at.
func logLevel(cfg config.Configuration) zerolog.Level {
	if cfg.Debug {
		return zerolog.TraceLevel
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// windowTitle shows title in the title bar of the terminal, when stderr is one.
func windowTitle(title string) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\033]0;%s\007", title)
	}
}

func showSnackbar(sb store.SnackbarState) {
	if sb == nil {
		return
	}
	var e *zerolog.Event
	switch sb.Severity {
	case store.Error:
		e = log.Error()
	case store.Warning:
		e = log.Warn()
	default:
		e = log.Info()
	}
	e.Msg(sb.Content())
}
