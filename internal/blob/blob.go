// Package blob stores uploaded document bytes and rendered report images.
package blob

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Object is the handle returned after a successful write.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store persists opaque byte payloads under generated keys.
type Store interface {
	Put(key string, data []byte, contentType string) (*Object, error)
	Get(key string) ([]byte, error)
}

// NewKey generates a storage key, preserving the original extension so
// served files keep a usable filename.
func NewKey(filename string) string {
	ext := filepath.Ext(filename)
	return uuid.NewString() + ext
}

// LocalStore writes blobs to a directory on disk.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocal creates the backing directory if needed.
func NewLocal(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "blob: create dir %s", dir)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Put(key string, data []byte, contentType string) (*Object, error) {
	// contentType is not persisted locally; the extension carries it.
	_ = contentType
	if key == "" || strings.Contains(key, "..") || strings.ContainsRune(key, os.PathSeparator) {
		return nil, eris.Errorf("blob: invalid key %q", key)
	}
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, eris.Wrapf(err, "blob: write %s", key)
	}
	return &Object{Key: key, URL: s.baseURL + "/" + key}, nil
}

func (s *LocalStore) Get(key string) ([]byte, error) {
	if key == "" || strings.Contains(key, "..") || strings.ContainsRune(key, os.PathSeparator) {
		return nil, eris.Errorf("blob: invalid key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return nil, eris.Wrapf(err, "blob: read %s", key)
	}
	return data, nil
}
