package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/infrastructure/postgres/generated"
)

// DocumentStore implements usecase.DocumentStore over a JSONB documents
// table. Selectors are matched with JSONB containment.
type DocumentStore struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
	retrier *Retrier
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(pool *pgxpool.Pool, retrier *Retrier) *DocumentStore {
	return &DocumentStore{
		pool:    pool,
		queries: generated.New(pool),
		retrier: retrier,
	}
}

// Get retrieves a document by id.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var row generated.GetDocumentRow
	err := s.retrier.Retry(ctx, func() error {
		var err error
		row, err = s.queries.GetDocument(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return toDocument(row.ID, row.Rev, row.Body), nil
}

// Put inserts the document when Rev is empty and otherwise updates it if the
// stored revision still equals Rev.
func (s *DocumentStore) Put(ctx context.Context, doc *domain.Document) (string, error) {
	if doc.ID == "" {
		return "", fmt.Errorf("%w: document id", domain.ErrMissingField)
	}
	if !isObject(doc.Body) {
		return "", fmt.Errorf("%w: document body is not a JSON object", domain.ErrValidation)
	}

	if doc.Rev == "" {
		return s.insert(ctx, doc)
	}
	return s.update(ctx, doc)
}

func (s *DocumentStore) insert(ctx context.Context, doc *domain.Document) (string, error) {
	var rev int64
	err := s.retrier.Retry(ctx, func() error {
		var err error
		rev, err = s.queries.InsertDocument(ctx, generated.InsertDocumentParams{
			ID:   doc.ID,
			Body: doc.Body,
		})
		return err
	})
	if err != nil {
		if hasCode(err, pgErrUniqueViolation) {
			return "", fmt.Errorf("%w: document %s already exists", domain.ErrConflict, doc.ID)
		}
		return "", fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return strconv.FormatInt(rev, 10), nil
}

func (s *DocumentStore) update(ctx context.Context, doc *domain.Document) (string, error) {
	expected, err := strconv.ParseInt(doc.Rev, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: document %s has malformed revision %q", domain.ErrConflict, doc.ID, doc.Rev)
	}

	var rev int64
	err = s.retrier.Retry(ctx, func() error {
		var err error
		rev, err = s.queries.UpdateDocument(ctx, generated.UpdateDocumentParams{
			ID:   doc.ID,
			Rev:  expected,
			Body: doc.Body,
		})
		return err
	})
	if err == nil {
		return strconv.FormatInt(rev, 10), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to update document %s: %w", doc.ID, err)
	}

	// No row matched: either the document is gone or the revision moved on.
	current, getErr := s.Get(ctx, doc.ID)
	if getErr != nil {
		return "", getErr
	}
	return "", fmt.Errorf("%w: document %s is at revision %s, not %s", domain.ErrConflict, doc.ID, current.Rev, doc.Rev)
}

// Find returns documents containing every selector pair, ordered by id.
func (s *DocumentStore) Find(ctx context.Context, q domain.Query) ([]*domain.Document, error) {
	selector, err := encodeSelector(q.Selector)
	if err != nil {
		return nil, err
	}

	var rows []generated.FindDocumentsRow
	err = s.retrier.Retry(ctx, func() error {
		var err error
		rows, err = s.queries.FindDocuments(ctx, generated.FindDocumentsParams{
			Selector: selector,
			MaxRows:  clampLimit(q.Limit),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	out := make([]*domain.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDocument(r.ID, r.Rev, r.Body))
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count(ctx context.Context) (int64, error) {
	return s.queries.CountDocuments(ctx)
}

func encodeSelector(sel domain.Selector) ([]byte, error) {
	if sel == nil {
		sel = domain.Selector{}
	}
	b, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("encode selector: %w", err)
	}
	return b, nil
}

func clampLimit(limit int) int32 {
	switch {
	case limit <= 0:
		return 0
	case limit > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(limit)
	}
}

func isObject(body json.RawMessage) bool {
	var v map[string]json.RawMessage
	return json.Unmarshal(body, &v) == nil && v != nil
}

func toDocument(id string, rev int64, body []byte) *domain.Document {
	return &domain.Document{ID: id, Rev: strconv.FormatInt(rev, 10), Body: json.RawMessage(body)}
}
