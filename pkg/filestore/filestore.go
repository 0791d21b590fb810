// Package filestore persists uploaded media on the local filesystem under
// category-prefixed directories (videos/, thumbnails/, documents/).
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound indicates the stored file is missing on disk.
	ErrNotFound = errors.New("file not found in store")
	// ErrInvalidPath indicates a path that escapes the storage root.
	ErrInvalidPath = errors.New("invalid storage path")
)

// Store is a filesystem-backed media store rooted at a single directory.
type Store struct {
	root string
}

// New creates the storage root if needed and returns a Store.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Store{root: abs}, nil
}

// Root returns the absolute storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes the reader's contents under category/name and returns the
// relative stored path and the number of bytes written. The write is a single
// buffered copy; there is no chunking or resumability.
func (s *Store) Save(category, name string, r io.Reader) (string, int64, error) {
	rel := filepath.Join(category, name)

	abs, err := s.resolve(rel)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", 0, fmt.Errorf("create category dir: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		os.Remove(abs)
		return "", 0, fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(rel), written, nil
}

// Size returns the byte size of a stored file.
func (s *Store) Size(rel string) (int64, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return info.Size(), nil
}

// ReadAll loads an entire stored file into memory.
func (s *Store) ReadAll(rel string) ([]byte, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

// ReadRange loads the inclusive byte interval [start, end] of a stored file
// into memory. The slice is fully buffered before being returned, which bounds
// the largest serviceable range to available process memory.
func (s *Store) ReadRange(rel string, start, end int64) ([]byte, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	// A short read means the file shrank after its size was checked;
	// returning a zero-padded buffer would corrupt the stream.
	buf := make([]byte, end-start+1)
	if _, err := f.ReadAt(buf, start); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("read range [%d,%d]: file truncated: %w", start, end, io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	return buf, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps a relative stored path onto the root, rejecting traversal.
func (s *Store) resolve(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, cleaned), nil
}
