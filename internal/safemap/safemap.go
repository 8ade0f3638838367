// Package safemap provides a key/value container that never hands out absent values. A lookup of a missing key
// and the insertion of a nil value are both hard failures, which makes it suitable for configuration registries
// where a missing entry is a programming defect rather than something to default.
package safemap

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrValueRequired = errors.New("value required")
)

// Entry is a key/value pair used to build a Map.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// E is a shorthand for building an Entry.
func E[K comparable, V any](key K, value V) Entry[K, V] {
	return Entry[K, V]{Key: key, Value: value}
}

type Map[K comparable, V any] struct {
	values map[K]V
	keys   []K
}

// New builds a map from the given entries. It fails with ErrValueRequired on the first absent value.
func New[K comparable, V any](entries ...Entry[K, V]) (*Map[K, V], error) {
	m := &Map[K, V]{values: make(map[K]V, len(entries))}
	for _, e := range entries {
		if err := m.Set(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FilterAbsent builds a map from the given entries, skipping the ones whose value is absent.
func FilterAbsent[K comparable, V any](entries ...Entry[K, V]) *Map[K, V] {
	m := &Map[K, V]{values: make(map[K]V, len(entries))}
	for _, e := range entries {
		if isAbsent(e.Value) {
			continue
		}
		m.put(e.Key, e.Value)
	}
	return m
}

// Must is like New but panics on error. It is meant for package level registries.
func Must[K comparable, V any](entries ...Entry[K, V]) *Map[K, V] {
	m, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map[K, V]) Get(key K) (V, error) {
	v, ok := m.values[key]
	if !ok {
		return v, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, nil
}

// MustGet returns the value for key and panics if there is none.
func (m *Map[K, V]) MustGet(key K) V {
	v, err := m.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

func (m *Map[K, V]) Set(key K, value V) error {
	if isAbsent(value) {
		return fmt.Errorf("%w: value for key %v is absent", ErrValueRequired, key)
	}
	if m.values == nil {
		m.values = make(map[K]V)
	}
	m.put(key, value)
	return nil
}

func (m *Map[K, V]) put(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Map[K, V]) Len() int {
	return len(m.values)
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Range calls f for every entry in insertion order until f returns false.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
