package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sidereusnuntius/fairsonority/internal/safemap"
)

var ErrTypeMismatch = errors.New("unexpected value type")

// Validator returns the error message for value; the empty string means the value is valid.
type Validator[V any] func(value V) string

type DefaultValueFactory[V any] func() V

// Transformer converts a raw input value, usually a string, into the field's value type.
type Transformer[V any] func(raw any) (V, error)

// FieldConfig drives one form field. It is built with Field, which keeps the field's value type while letting
// fields of different types share one registry.
type FieldConfig interface {
	validate(value any) (string, error)
	defaultValue() any
	transform(raw any) (any, error)
}

// Config maps field keys to their configuration. Missing keys are hard failures.
type Config = safemap.Map[string, FieldConfig]

type field[V any] struct {
	validator   Validator[V]
	factory     DefaultValueFactory[V]
	transformer Transformer[V]
}

// Field builds the configuration of a field holding values of type V. At most one transformer is used.
func Field[V any](validate Validator[V], defaultValue DefaultValueFactory[V], transform ...Transformer[V]) FieldConfig {
	f := &field[V]{
		validator: validate,
		factory:   defaultValue,
	}
	if len(transform) > 0 {
		f.transformer = transform[0]
	}
	return f
}

func (f *field[V]) validate(value any) (string, error) {
	v, ok := value.(V)
	if !ok {
		return "", mismatch[V](value)
	}
	return f.validator(v), nil
}

func (f *field[V]) defaultValue() any {
	return f.factory()
}

func (f *field[V]) transform(raw any) (any, error) {
	if f.transformer == nil {
		v, ok := raw.(V)
		if !ok {
			return nil, mismatch[V](raw)
		}
		return v, nil
	}
	return f.transformer(raw)
}

func mismatch[V any](value any) error {
	var zero V
	return fmt.Errorf("%w: expected %T, got %T", ErrTypeMismatch, zero, value)
}

func EmptyString() string {
	return ""
}

func EmptyStrings() []string {
	return []string{}
}

func Zero[V any]() V {
	var v V
	return v
}

// Int parses decimal strings into integers. Integers pass through unchanged.
func Int(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.New("Value must be a whole number")
		}
		return n, nil
	}
	return 0, mismatch[int](raw)
}

// Time returns a transformer parsing strings with the given layout. time.Time values pass through unchanged.
func Time(layout string) Transformer[time.Time] {
	return func(raw any) (time.Time, error) {
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return time.Time{}, nil
			}
			t, err := time.Parse(layout, v)
			if err != nil {
				return time.Time{}, fmt.Errorf("Date must match %s", layout)
			}
			return t, nil
		}
		return time.Time{}, mismatch[time.Time](raw)
	}
}

// List splits comma separated strings into trimmed items. Slices pass through unchanged.
func List(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return nil, mismatch[[]string](raw)
}
