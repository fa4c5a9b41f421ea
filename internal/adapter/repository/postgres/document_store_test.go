package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/domain"
)

func TestEncodeSelector(t *testing.T) {
	b, err := encodeSelector(domain.Selector{"type": "invoice", "supplierId": "s-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("selector is not a JSON object: %v", err)
	}
	if got["type"] != "invoice" || got["supplierId"] != "s-1" {
		t.Fatalf("unexpected selector %v", got)
	}

	empty, err := encodeSelector(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(empty) != "{}" {
		t.Fatalf("expected empty object, got %s", empty)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int32
	}{
		{-1, 0},
		{0, 0},
		{20, 20},
		{math.MaxInt32 + 1, math.MaxInt32},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPutRejectsBadDocuments(t *testing.T) {
	store := NewDocumentStore(nil, NewRetrier(zerolog.Nop()))
	ctx := context.Background()

	if _, err := store.Put(ctx, &domain.Document{Body: json.RawMessage(`{}`)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing id, got %v", err)
	}
	for _, body := range []string{`[1,2]`, `"text"`, `null`, `{`} {
		if _, err := store.Put(ctx, &domain.Document{ID: "x", Body: json.RawMessage(body)}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for body %s, got %v", body, err)
		}
	}
}
