package domain

import (
	"encoding/json"
	"time"
)

// State is the soft-delete flag carried by every document.
type State string

const (
	StateActive   State = "Active"
	StateInactive State = "Inactive"
)

// DocType discriminates documents sharing the store.
type DocType string

const (
	DocAccount     DocType = "account"
	DocClient      DocType = "client"
	DocSupplier    DocType = "supplier"
	DocAgent       DocType = "agent"
	DocTransaction DocType = "transaction"
	DocSale        DocType = "sale"
	DocInvoice     DocType = "invoice"
	DocExpense     DocType = "expense"
)

// Meta is the header shared by all documents. Rev is managed by the store and
// never serialized into the document body.
type Meta struct {
	ID        string     `json:"_id"`
	Rev       string     `json:"-"`
	Type      DocType    `json:"type"`
	State     State      `json:"state"`
	ProjectID string     `json:"projectId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Header returns the document header. Every document type gets it through
// embedding.
func (m *Meta) Header() *Meta { return m }

// Active reports whether the document has not been archived.
func (m *Meta) Active() bool { return m.State == StateActive }

// Touch stamps UpdatedAt.
func (m *Meta) Touch(now time.Time) {
	m.UpdatedAt = &now
}

// Document is the unit the store reads and writes: a flat JSON body plus the
// store-managed id and revision. An empty Rev on Put means "create".
type Document struct {
	ID   string
	Rev  string
	Body json.RawMessage
}

// Selector matches documents whose top-level string fields equal every value
// in the map.
type Selector map[string]string

// Query is a store lookup. A zero Limit means no limit.
type Query struct {
	Selector Selector
	Limit    int
}
