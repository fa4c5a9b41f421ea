// Package memory provides an in-memory DocumentStore used for development and
// tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/iho/estateledger/internal/domain"
)

type record struct {
	rev    int64
	body   json.RawMessage
	fields map[string]string
}

// DocumentStore keeps documents in a map guarded by an RWMutex. Revisions are
// per-document counters.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*record
}

// NewDocumentStore constructs an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*record)}
}

// Get implements usecase.DocumentStore.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return toDocument(id, r), nil
}

// Put implements usecase.DocumentStore.
func (s *DocumentStore) Put(_ context.Context, doc *domain.Document) (string, error) {
	if doc.ID == "" {
		return "", fmt.Errorf("%w: document id", domain.ErrMissingField)
	}
	fields, err := stringFields(doc.Body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.docs[doc.ID]
	switch {
	case doc.Rev == "" && exists:
		return "", fmt.Errorf("%w: document %s already exists", domain.ErrConflict, doc.ID)
	case doc.Rev != "" && !exists:
		return "", fmt.Errorf("%w: document %s", domain.ErrNotFound, doc.ID)
	case doc.Rev != "" && strconv.FormatInt(current.rev, 10) != doc.Rev:
		return "", fmt.Errorf("%w: document %s is at revision %d, not %s", domain.ErrConflict, doc.ID, current.rev, doc.Rev)
	}

	var rev int64 = 1
	if exists {
		rev = current.rev + 1
	}
	body := make(json.RawMessage, len(doc.Body))
	copy(body, doc.Body)
	s.docs[doc.ID] = &record{rev: rev, body: body, fields: fields}

	return strconv.FormatInt(rev, 10), nil
}

// Find implements usecase.DocumentStore. Results are ordered by id.
func (s *DocumentStore) Find(_ context.Context, q domain.Query) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs))
	for id, r := range s.docs {
		if matches(r.fields, q.Selector) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}

	out := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, toDocument(id, s.docs[id]))
	}
	return out, nil
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func matches(fields map[string]string, sel domain.Selector) bool {
	for k, v := range sel {
		if fields[k] != v {
			return false
		}
	}
	return true
}

func toDocument(id string, r *record) *domain.Document {
	body := make(json.RawMessage, len(r.body))
	copy(body, r.body)
	return &domain.Document{ID: id, Rev: strconv.FormatInt(r.rev, 10), Body: body}
}

// stringFields indexes the top-level string values of a JSON object.
func stringFields(body json.RawMessage) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: document body is not a JSON object", domain.ErrValidation)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return fields, nil
}
