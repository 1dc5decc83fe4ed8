package zarr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	MemoryStoreType   = "MemoryStore"
	LocalStoreType    = "LocalStore"
	dirPermissionBits = 0755
)

// ErrNotFound is returned by stores for missing keys
var ErrNotFound = errors.New("not found")

// Store is a flat key-value view of a zarr hierarchy. Keys are slash
// separated logical paths such as "lon/.zarray" or "lon/0".
type Store interface {
	Get(key string) (io.ReadCloser, error)
	Put(key string, val io.Reader) error
	// List returns every key under prefix in sorted order. An empty prefix
	// lists the whole store.
	List(prefix string) ([]string, error)
	Type() string
}

// MemoryStore holds chunks and metadata in a map. It is safe for concurrent
// use.
type MemoryStore struct {
	lk   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Type() string { return MemoryStoreType }

func (s *MemoryStore) Get(key string) (io.ReadCloser, error) {
	s.lk.RLock()
	d, ok := s.data[key]
	s.lk.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(d)), nil
}

func (s *MemoryStore) Put(key string, val io.Reader) error {
	d, err := io.ReadAll(val)
	if err != nil {
		return fmt.Errorf("buffering %s: %w", key, err)
	}
	s.lk.Lock()
	s.data[key] = d
	s.lk.Unlock()
	return nil
}

func (s *MemoryStore) List(prefix string) ([]string, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// LocalStore keeps each key as a file below a base directory. Slashes in
// keys become directory separators.
type LocalStore struct {
	base string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(base string) (*LocalStore, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, dirPermissionBits); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &LocalStore{base: abs}, nil
}

func (s *LocalStore) Type() string { return LocalStoreType }

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.base, filepath.FromSlash(key))
}

func (s *LocalStore) Get(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, err
}

func (s *LocalStore) Put(key string, val io.Reader) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissionBits); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, val); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return f.Close()
}

func (s *LocalStore) List(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.base, path)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
