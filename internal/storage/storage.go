// Package storage defines the durable key/value storage backing the session. Values survive process restarts;
// nothing else about the client is persisted.
package storage

import (
	"errors"
	"sync"
)

var (
	ErrNotDir     = errors.New("given root is not a directory")
	ErrInternal   = errors.New("internal error")
	ErrInvalidKey = errors.New("invalid key")
	ErrNotExist   = errors.New("key does not exist")
)

type Storage interface {
	// Get returns ErrNotExist if nothing is stored under key.
	Get(key string) (string, error)
	Put(key, value string) error
	// Delete returns ErrNotExist if nothing is stored under key.
	Delete(key string) error
}

// Memory is a Storage that keeps values in process memory, for tests and throwaway sessions.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotExist
	}
	return v, nil
}

func (m *Memory) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return ErrNotExist
	}
	delete(m.values, key)
	return nil
}
