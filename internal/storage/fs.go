package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/attachment"
	"github.com/starford/esurat/internal/checksum"
)

// FS implements Blobs in a directory. Names are the content digest plus the
// sniffed extension, so storing the same file twice yields one entry.
type FS struct {
	root string
}

var _ Blobs = (*FS)(nil)

// NewFS returns an FS rooted at dir, creating it when missing.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath maps a stored name to its file, rejecting anything that is not a
// single path element.
func (f *FS) safePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", apperr.Invalid("Nama file tidak valid.")
	}
	return filepath.Join(f.root, name), nil
}

// Put validates and stores data.
func (f *FS) Put(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", apperr.Invalid(attachment.UnsupportedMessage)
	}
	if len(data) > attachment.MaxSize {
		return "", "", apperr.Invalid("Ukuran file terlalu besar.")
	}
	mediaType, ext, err := attachment.Detect(data)
	if err != nil {
		return "", "", err
	}
	name := checksum.FileKey(data) + ext
	abs, err := f.safePath(name)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return name, mediaType, nil
	}
	if err := writeAtomic(abs, data); err != nil {
		return "", "", err
	}
	return name, mediaType, nil
}

// Get reads a stored file.
func (f *FS) Get(name string) ([]byte, string, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("attachment %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("storage: read %s: %w", name, err)
	}
	mediaType, _, err := attachment.Detect(data)
	if err != nil {
		return nil, "", err
	}
	return data, mediaType, nil
}

// Delete removes a stored file.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	err = os.Remove(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("attachment %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// writeAtomic writes to a temp file in the same directory, syncs it and
// renames it into place.
func writeAtomic(abs string, content []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".esurat-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
