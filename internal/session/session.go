// Package session holds the bearer token used by authenticated requests and the set of request paths that must
// go out without it.
package session

import (
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/storage"
)

// AccessTokenKey is the storage key of the persisted token.
const AccessTokenKey = "accessToken"

var ErrNoAccessToken = errors.New("no access token")

type Session struct {
	mu       sync.RWMutex
	token    *string
	storage  storage.Storage
	excluded map[string]struct{}
}

// New creates a session, loading the token persisted in s, if any.
func New(s storage.Storage) (*Session, error) {
	session := &Session{
		storage:  s,
		excluded: make(map[string]struct{}),
	}

	token, err := s.Get(AccessTokenKey)
	switch {
	case err == nil:
		session.token = &token
	case errors.Is(err, storage.ErrNotExist):
	default:
		return nil, err
	}
	return session, nil
}

func (s *Session) HasAccessToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

func (s *Session) AccessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return "", ErrNoAccessToken
	}
	return *s.token, nil
}

// SetAccessToken persists token and then makes it the in-memory token. If persisting fails, neither copy changes.
func (s *Session) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Put(AccessTokenKey, token); err != nil {
		return err
	}
	s.token = &token
	return nil
}

// DeleteAccessToken removes both the persisted and the in-memory token.
func (s *Session) DeleteAccessToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(AccessTokenKey); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return err
	}
	s.token = nil
	return nil
}

// SetExcludedPaths replaces the set of paths requested without a token.
func (s *Session) SetExcludedPaths(paths ...string) {
	excluded := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		excluded[p] = struct{}{}
	}
	s.mu.Lock()
	s.excluded = excluded
	s.mu.Unlock()
}

func (s *Session) AddExcludedPaths(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		s.excluded[p] = struct{}{}
	}
}

func (s *Session) ExcludedPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.excluded))
	for p := range s.excluded {
		paths = append(paths, p)
	}
	return paths
}

// IsExcluded reports whether path is in the exclusion set. Matching is exact.
func (s *Session) IsExcluded(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.excluded[path]
	return ok
}

// Authorize attaches the bearer token to r, unless path is excluded. Without a token the request proceeds
// unauthenticated and a warning is logged; answering it is up to the backend.
func (s *Session) Authorize(r *http.Request, path string) {
	if s.IsExcluded(path) {
		return
	}
	token, err := s.AccessToken()
	if err != nil {
		log.Warn().Str("method", r.Method).Str("path", path).Msg("request requires access token")
		return
	}
	r.Header.Set("Authorization", "Bearer "+token)
}
