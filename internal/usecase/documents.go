package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iho/estateledger/internal/domain"
)

type document interface {
	Header() *domain.Meta
}

func decode(doc *domain.Document, v document) error {
	if err := json.Unmarshal(doc.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	h := v.Header()
	h.ID = doc.ID
	h.Rev = doc.Rev
	return nil
}

func encode(v document) (*domain.Document, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", v.Header().ID, err)
	}
	h := v.Header()
	return &domain.Document{ID: h.ID, Rev: h.Rev, Body: body}, nil
}

// load fetches id into v and checks its type. A document of another type is
// reported as not found.
func load(ctx context.Context, store DocumentStore, id string, want domain.DocType, v document) error {
	doc, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := decode(doc, v); err != nil {
		return err
	}
	if v.Header().Type != want {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, want, id)
	}
	return nil
}

// loadActive is load that also rejects archived documents.
func loadActive(ctx context.Context, store DocumentStore, id string, want domain.DocType, v document) error {
	if err := load(ctx, store, id, want, v); err != nil {
		return err
	}
	if !v.Header().Active() {
		return fmt.Errorf("%w: %s %s is inactive", domain.ErrNotFound, want, id)
	}
	return nil
}

// save writes v and records the new revision on it.
func save(ctx context.Context, store DocumentStore, v document) error {
	doc, err := encode(v)
	if err != nil {
		return err
	}
	rev, err := store.Put(ctx, doc)
	if err != nil {
		return err
	}
	v.Header().Rev = rev
	return nil
}

func findAll[T any, P interface {
	*T
	document
}](ctx context.Context, store DocumentStore, q domain.Query) ([]P, error) {
	docs, err := store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]P, 0, len(docs))
	for _, doc := range docs {
		v := P(new(T))
		if err := decode(doc, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// listActive pages through the Active documents of one type in a project.
func listActive[T any, P interface {
	*T
	document
}](ctx context.Context, store DocumentStore, docType domain.DocType, in ListInput) ([]P, error) {
	in = in.normalize()
	sel, err := activeSelector(docType, in.ProjectID)
	if err != nil {
		return nil, err
	}
	items, err := findAll[T, P](ctx, store, domain.Query{
		Selector: sel,
		Limit:    in.Limit + in.Offset,
	})
	if err != nil {
		return nil, err
	}
	if in.Offset >= len(items) {
		return []P{}, nil
	}
	return items[in.Offset:], nil
}

// activeSelector matches the Active documents of one type in a project. An
// empty project is rejected rather than matching every project.
func activeSelector(docType domain.DocType, projectID string) (domain.Selector, error) {
	if err := requireProject(projectID); err != nil {
		return nil, err
	}
	return projectSelector(docType, projectID), nil
}

func projectSelector(docType domain.DocType, projectID string) domain.Selector {
	return domain.Selector{
		"type":      string(docType),
		"state":     string(domain.StateActive),
		"projectId": projectID,
	}
}

func requireProject(projectID string) error {
	if projectID == "" {
		return fmt.Errorf("%w: projectId", domain.ErrMissingField)
	}
	return nil
}

// resolveParty fetches the party referenced by id using the strategy of kind.
// Missing, inactive and ambiguous references are all ErrNotFound.
func resolveParty(ctx context.Context, store DocumentStore, kind domain.PartyKind, id string) (*domain.Party, error) {
	switch kind.Lookup() {
	case domain.LookupByID:
		p := &domain.Party{}
		if err := loadActive(ctx, store, id, kind.DocType(), p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		parties, err := findAll[domain.Party](ctx, store, domain.Query{
			Selector: domain.Selector{"_id": id, "type": string(kind.DocType())},
		})
		if err != nil {
			return nil, err
		}
		if len(parties) != 1 {
			return nil, fmt.Errorf("%w: %s %s (%d matches)", domain.ErrNotFound, kind, id, len(parties))
		}
		if !parties[0].Active() {
			return nil, fmt.Errorf("%w: %s %s is inactive", domain.ErrNotFound, kind, id)
		}
		return parties[0], nil
	}
}
