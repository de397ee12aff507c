package document

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

type snapshot struct {
	Documents     map[string]domain.Document         `json:"documents"`
	Deterministic map[string]string                  `json:"deterministic"`
	Identities    map[string][]domain.IdentityRecord `json:"identities"`
}

// OpenFile returns a Memory backed by the JSON snapshot at path, creating
// the parent directory when needed. A missing file starts empty.
func OpenFile(path string) (*Memory, error) {
	const op = "document.OpenFile"

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, failure.Wrap(err, failure.StorageFailure, op, "create document directory")
	}
	m := NewMemory()
	m.path = path

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, failure.Wrap(err, failure.StorageFailure, op, "read document snapshot")
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, failure.Wrap(err, failure.StorageFailure, op, "document snapshot is corrupt")
	}
	for id, doc := range snap.Documents {
		m.docs[id] = doc
	}
	for k, id := range snap.Deterministic {
		m.deterministic[k] = id
	}
	for addr, recs := range snap.Identities {
		m.identities[addr] = recs
	}
	return m, nil
}

// saveLocked writes the snapshot when m is file-backed. Callers hold mu.
func (m *Memory) saveLocked(op string) error {
	if m.path == "" {
		return nil
	}
	b, err := json.Marshal(snapshot{
		Documents:     m.docs,
		Deterministic: m.deterministic,
		Identities:    m.identities,
	})
	if err != nil {
		return failure.Wrap(err, failure.StorageFailure, op, "encode document snapshot")
	}
	if err := writeFile(m.path, b, 0o600); err != nil {
		return failure.Wrap(err, failure.StorageFailure, op, "write document snapshot")
	}
	return nil
}

// writeFile writes through a temp file and renames it over path.
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
