// Package form drives a fixed, ordered set of independently typed input fields through one protocol: seed
// defaults, transform raw input, validate into per-field messages and assemble the typed model on submit.
//
// A State belongs to the view hosting the form and must not be shared.
package form

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Entry is the current value and error message of one field.
type Entry struct {
	Value any
	Error string
	// Validated is false until the field's validator ran at least once, telling a pristine field apart
	// from one that was validated and found valid.
	Validated bool

	// invalid holds the last transform failure until an input is transformed successfully. Value then holds
	// the default value, which must not be taken for the user's input.
	invalid error
}

type State struct {
	keys    []string
	config  *Config
	entries map[string]*Entry
}

// NewState seeds every key with its field's default value. The state keeps the order of keys.
func NewState(keys []string, config *Config) (*State, error) {
	s := &State{
		keys:    make([]string, len(keys)),
		config:  config,
		entries: make(map[string]*Entry, len(keys)),
	}
	copy(s.keys, keys)

	for _, k := range keys {
		if _, ok := s.entries[k]; ok {
			return nil, fmt.Errorf("duplicate form key %s", k)
		}
		f, err := config.Get(k)
		if err != nil {
			return nil, err
		}
		s.entries[k] = &Entry{Value: f.defaultValue()}
	}
	return s, nil
}

// NewStateFromConfig uses the config's insertion order as the key order.
func NewStateFromConfig(config *Config) (*State, error) {
	return NewState(config.Keys(), config)
}

func (s *State) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Key returns the i-th key.
func (s *State) Key(i int) string {
	return s.keys[i]
}

func (s *State) entry(key string) (*Entry, FieldConfig, error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, nil, fmt.Errorf("unknown form key %s", key)
	}
	f, err := s.config.Get(key)
	return e, f, err
}

func (s *State) Value(key string) any {
	if e, ok := s.entries[key]; ok {
		return e.Value
	}
	return nil
}

func (s *State) Error(key string) string {
	if e, ok := s.entries[key]; ok {
		return e.Error
	}
	return ""
}

func (s *State) Validated(key string) bool {
	if e, ok := s.entries[key]; ok {
		return e.Validated
	}
	return false
}

// Get returns the typed current value of key.
func Get[V any](s *State, key string) (V, error) {
	v, ok := s.Value(key).(V)
	if !ok {
		return v, fmt.Errorf("%w: field %s", ErrTypeMismatch, key)
	}
	return v, nil
}

// UpdateValue stores raw, passed through the field's transformer when it has one. A failed transformation
// stores the field's default value and records the failure as the field's error.
func (s *State) UpdateValue(key string, raw any) error {
	e, f, err := s.entry(key)
	if err != nil {
		return err
	}

	v, err := f.transform(raw)
	if err != nil {
		e.Value = f.defaultValue()
		e.Error = err.Error()
		e.Validated = true
		e.invalid = err
		return err
	}
	e.Value = v
	e.invalid = nil
	return nil
}

// ValidateValue runs the field's validator on value, stores the message and returns it.
func (s *State) ValidateValue(key string, value any) (string, error) {
	e, f, err := s.entry(key)
	if err != nil {
		return "", err
	}

	msg, err := f.validate(value)
	if err != nil {
		return "", err
	}
	e.Error = msg
	e.Validated = true
	return msg, nil
}

// Validate validates the current value of key. A field whose last input could not be transformed keeps
// reporting that failure.
func (s *State) Validate(key string) (string, error) {
	e, _, err := s.entry(key)
	if err != nil {
		return "", err
	}
	if e.invalid != nil {
		e.Error = e.invalid.Error()
		e.Validated = true
		return e.Error, nil
	}
	return s.ValidateValue(key, e.Value)
}

// UpdateErrors validates every field in key order, including the untouched ones, and returns the messages
// in the same order.
func (s *State) UpdateErrors() []string {
	errs := make([]string, len(s.keys))
	for i, k := range s.keys {
		msg, err := s.Validate(k)
		if err != nil {
			msg = err.Error()
			s.entries[k].Error = msg
		}
		errs[i] = msg
	}
	return errs
}

// Reset puts every field back to its default value and clears the messages.
func (s *State) Reset() {
	for _, k := range s.keys {
		f := s.config.MustGet(k)
		s.entries[k] = &Entry{Value: f.defaultValue()}
	}
}

// Values returns the current values keyed by field key.
func (s *State) Values() map[string]any {
	values := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		values[k] = s.entries[k].Value
	}
	return values
}

func HasErrors(errs []string) bool {
	for _, e := range errs {
		if e != "" {
			return true
		}
	}
	return false
}

// CreateModel assembles a T from the current values. Keys are matched against the json tags of T.
func CreateModel[T any](s *State) (T, error) {
	var model T
	return UpdateModel(model, s)
}

// UpdateModel assembles a T from the current values on top of base, so fields that are not part of the form,
// such as foreign keys, keep the value they have in base.
func UpdateModel[T any](base T, s *State) (T, error) {
	model := base
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &model,
		ErrorUnused: true,
	})
	if err != nil {
		return base, err
	}
	if err = dec.Decode(s.Values()); err != nil {
		return base, fmt.Errorf("assemble form model: %w", err)
	}
	return model, nil
}
