// Package storage keeps uploaded files on local disk, one directory per user.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("stored file not found")
	ErrInvalidKey = errors.New("invalid storage key")
	ErrTooLarge   = errors.New("file exceeds size limit")
)

type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

// Save writes at most maxBytes from r under the user's directory and returns the
// generated key and the number of bytes written.
func (s *LocalStorage) Save(userId uuid.UUID, fileName string, r io.Reader, maxBytes int64) (string, int64, error) {
	dir := filepath.Join(s.root, userId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create user dir: %w", err)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(dir, key)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return key, n, nil
}

// Path resolves a key to an absolute path inside the user's directory.
func (s *LocalStorage) Path(userId uuid.UUID, key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", ErrInvalidKey
	}
	dir := filepath.Join(s.root, userId.String())
	path := filepath.Join(dir, key)
	if !strings.HasPrefix(path, dir+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return path, nil
}

func (s *LocalStorage) Open(userId uuid.UUID, key string) (*os.File, error) {
	path, err := s.Path(userId, key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes the file. Missing files are not an error.
func (s *LocalStorage) Delete(userId uuid.UUID, key string) error {
	path, err := s.Path(userId, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}
