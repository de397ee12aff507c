package store

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"

	"gatekey/internal/domain"
)

const (
	plainExt  = ".json"
	sealedExt = ".enc"
)

// FileStore keeps one file per key under dir. With a passphrase every value
// is sealed; without one values are written as-is with 0600 permissions.
type FileStore struct {
	dir        string
	passphrase string
	kdf        kdfParams
	mu         sync.Mutex
}

var _ domain.CredentialStore = (*FileStore)(nil)

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithPassphrase seals values with a key derived from passphrase.
func WithPassphrase(passphrase string) FileOption {
	return func(s *FileStore) { s.passphrase = passphrase }
}

// WithScryptCost overrides the scrypt parameters used when sealing.
func WithScryptCost(n, r, p int) FileOption {
	return func(s *FileStore) { s.kdf = kdfParams{N: n, R: r, P: p} }
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{dir: dir, kdf: defaultKDF()}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok, err := readFile(s.path(key))
	if err != nil || !ok {
		return nil, false, err
	}
	if s.passphrase == "" {
		return b, true, nil
	}
	pt, err := open(s.passphrase, key, b)
	if err != nil {
		return nil, false, err
	}
	return pt, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := value
	if s.passphrase != "" {
		sealed, err := seal(s.passphrase, key, value, s.kdf)
		if err != nil {
			return err
		}
		out = sealed
	}
	return writeFile(s.path(key), out, 0o600)
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(s.path(key))
}

// path maps a key to a file name. Keys contain ':' so they are encoded.
func (s *FileStore) path(key string) string {
	ext := plainExt
	if s.passphrase != "" {
		ext = sealedExt
	}
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(key))+ext)
}
