package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type local struct {
	root string
}

// NewLocal returns a Storage writing blobs under the given directory.
func NewLocal(root string) (Storage, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrap(err, "could not create storage directory")
	}
	return &local{root: root}, nil
}

func (s *local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(filename), 0o750); err != nil {
		return errors.Wrap(err, "could not create blob directory")
	}

	f, err := os.CreateTemp(filepath.Dir(filename), ".upload-*")
	if err != nil {
		return errors.Wrap(err, "could not create blob")
	}
	defer os.Remove(f.Name())

	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		return errors.Wrap(err, "could not write blob")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "could not write blob")
	}

	return errors.Wrap(os.Rename(f.Name(), filename), "could not write blob")
}

func (s *local) Get(_ context.Context, key string) (io.ReadCloser, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read blob")
	}
	return f, nil
}

func (s *local) Remove(_ context.Context, key string) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	err = os.Remove(filename)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "could not remove blob")
}

func (s *local) filename(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errors.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
