package document

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Memory holds documents and known identities in process memory. A Memory
// opened with OpenFile also writes a snapshot after every change.
type Memory struct {
	mu            sync.RWMutex
	docs          map[string]domain.Document
	deterministic map[string]string
	identities    map[string][]domain.IdentityRecord
	path          string
}

var (
	_ domain.DocumentStore     = (*Memory)(nil)
	_ domain.IdentityDirectory = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		docs:          make(map[string]domain.Document),
		deterministic: make(map[string]string),
		identities:    make(map[string][]domain.IdentityRecord),
	}
}

func encode(op string, content any) (json.RawMessage, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, op, "content is not serializable")
	}
	return raw, nil
}

func checkPrincipal(op string, principal domain.DID) error {
	if principal == "" {
		return failure.New(failure.SessionNotFound, op, "a principal is required to write")
	}
	return nil
}

// Create stores content under a new ID.
func (m *Memory) Create(
	_ context.Context,
	content any,
	principal domain.DID,
	tags []string,
	schema string,
) (string, error) {
	const op = "document.Create"

	if err := checkPrincipal(op, principal); err != nil {
		return "", err
	}
	raw, err := encode(op, content)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = domain.Document{ID: id, Content: raw, Principal: principal, Tags: slices.Clone(tags), Schema: schema}
	if err := m.saveLocked(op); err != nil {
		delete(m.docs, id)
		return "", err
	}
	return id, nil
}

// Update replaces the content of an existing document. Only its principal
// may update it.
func (m *Memory) Update(
	_ context.Context,
	documentID string,
	content any,
	principal domain.DID,
	tags []string,
	schema string,
) error {
	const op = "document.Update"

	if err := checkPrincipal(op, principal); err != nil {
		return err
	}
	raw, err := encode(op, content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[documentID]
	if !ok {
		return failure.New(failure.InvalidInput, op, "document "+documentID+" not found")
	}
	if doc.Principal != principal {
		return failure.New(failure.SessionAuthorizationFailed, op, "document is controlled by another identity")
	}
	m.docs[documentID] = domain.Document{ID: documentID, Content: raw, Principal: principal, Tags: slices.Clone(tags), Schema: schema}
	if err := m.saveLocked(op); err != nil {
		m.docs[documentID] = doc
		return err
	}
	return nil
}

// Deterministic creates or updates the one document keyed by principal and
// tags.
func (m *Memory) Deterministic(ctx context.Context, content any, principal domain.DID, tags []string) (string, error) {
	const op = "document.Deterministic"

	if err := checkPrincipal(op, principal); err != nil {
		return "", err
	}
	key := string(principal) + "|" + strings.Join(tags, ",")

	m.mu.RLock()
	id, ok := m.deterministic[key]
	m.mu.RUnlock()
	if ok {
		return id, m.Update(ctx, id, content, principal, tags, "")
	}

	id, err := m.Create(ctx, content, principal, tags, "")
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, raced := m.deterministic[key]; raced {
		delete(m.docs, id)
		id = existing
	} else {
		m.deterministic[key] = id
	}
	return id, m.saveLocked(op)
}

// Load returns the document with documentID.
func (m *Memory) Load(_ context.Context, documentID string) (domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[documentID]
	if !ok {
		return domain.Document{}, failure.New(failure.InvalidInput, "document.Load", "document "+documentID+" not found")
	}
	doc.Tags = slices.Clone(doc.Tags)
	return doc, nil
}

// Register records an identity for IdentitiesByAddress. Re-registering a DID
// replaces its record; a zero follower count keeps the recorded one.
func (m *Memory) Register(_ context.Context, rec domain.IdentityRecord) error {
	const op = "document.Register"

	if rec.DID == "" || rec.Address == "" {
		return failure.New(failure.InvalidInput, op, "identity records need a DID and an address")
	}
	addr := strings.ToLower(rec.Address)
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.identities[addr]
	for i := range list {
		if list[i].DID == rec.DID {
			if rec.Followers == 0 {
				rec.Followers = list[i].Followers
			}
			list[i] = rec
			return m.saveLocked(op)
		}
	}
	m.identities[addr] = append(list, rec)
	return m.saveLocked(op)
}

// IdentitiesByAddress lists identities registered for address, matched
// case-insensitively.
func (m *Memory) IdentitiesByAddress(_ context.Context, address string) ([]domain.IdentityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.identities[strings.ToLower(address)]), nil
}
