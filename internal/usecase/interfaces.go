package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/estateledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// DocumentStore is the flat JSON document store every use case reads and
// writes through.
type DocumentStore interface {
	// Get returns domain.ErrNotFound if the id is absent.
	Get(ctx context.Context, id string) (*domain.Document, error)
	// Put creates the document when Rev is empty and replaces it otherwise. A
	// stale Rev fails with domain.ErrConflict. Returns the new revision.
	Put(ctx context.Context, doc *domain.Document) (string, error)
	// Find returns documents whose fields equal every selector value.
	Find(ctx context.Context, q domain.Query) ([]*domain.Document, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// IdempotencyProcessing is the value held by a claimed key until Update
// records the response.
var IdempotencyProcessing = []byte("processing")

// ReportInvalidator drops cached reports after a project's events change.
type ReportInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string)
}

// MetricsRecorder receives engine-level measurements.
type MetricsRecorder interface {
	EventCreated(kind domain.DocType)
	EventArchived(kind domain.DocType, reversed bool)
	PartialWrite(operation string)
	LedgerBuilt(kind domain.PartyKind, entries int, took time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) EventCreated(domain.DocType) {}
func (nopMetrics) EventArchived(domain.DocType, bool) {}
func (nopMetrics) PartialWrite(string) {}
func (nopMetrics) LedgerBuilt(domain.PartyKind, int, time.Duration) {}
