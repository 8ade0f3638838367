package filestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/storage"
)

// FileStore keeps one file per key under Root. Writes replace the file atomically, so a reader sees either the
// previous value or the new one.
type FileStore struct {
	Root string
}

func New(root string) (fs storage.Storage, err error) {
	fs = &FileStore{
		Root: root,
	}

	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			log.Error().Str("root", root).Msg("not a directory")
			err = storage.ErrNotDir
		}
		return
	}

	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(root, 0o700)
	}

	if err != nil {
		log.Error().Err(err).Msg("internal error when setting up storage")
		err = storage.ErrInternal
	}

	return
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", storage.ErrInvalidKey
	}
	return filepath.Join(s.Root, key), nil
}

func (s *FileStore) Get(key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", storage.ErrNotExist
		}
		log.Error().Err(err).Str("path", path).Msg("failed to read file")
		return "", storage.ErrInternal
	}
	return string(content), nil
}

func (s *FileStore) Put(key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = atomic.WriteFile(path, strings.NewReader(value)); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to write file")
		return storage.ErrInternal
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotExist
		}
		log.Error().Err(err).Msg("file deletion error")
		return storage.ErrInternal
	}

	return nil
}
