package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() *Transaction {
	return &Transaction{
		Meta:        Meta{ProjectID: "p1"},
		From:        "a1",
		To:          "c1",
		Source:      PartyAccount,
		Destination: PartyClient,
		Amount:      100,
		Currency:    KES,
		Rate:        decimal.NewFromInt(1),
		TransType:   TransWithdraw,
		Date:        NewDate(2024, 1, 1),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		err    error
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "missing from", mutate: func(tx *Transaction) { tx.From = "" }, err: ErrMissingField},
		{name: "missing to", mutate: func(tx *Transaction) { tx.To = "" }, err: ErrMissingField},
		{name: "same party", mutate: func(tx *Transaction) { tx.To = tx.From }, err: ErrSameParty},
		{name: "bad source", mutate: func(tx *Transaction) { tx.Source = "bank" }, err: ErrInvalidPartyKind},
		{name: "bad trans type", mutate: func(tx *Transaction) { tx.TransType = "refund" }, err: ErrInvalidTransType},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = 0 }, err: ErrInvalidAmount},
		{name: "bad currency", mutate: func(tx *Transaction) { tx.Currency = "EUR" }, err: ErrInvalidCurrency},
		{name: "negative rate", mutate: func(tx *Transaction) { tx.Rate = decimal.NewFromInt(-1) }, err: ErrInvalidRate},
		{name: "missing date", mutate: func(tx *Transaction) { tx.Date = Date{} }, err: ErrMissingField},
		{name: "missing project", mutate: func(tx *Transaction) { tx.ProjectID = " " }, err: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(tx)
			err := tx.Validate()
			if tt.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected error to wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestSale_Validate(t *testing.T) {
	sale := &Sale{Meta: Meta{ProjectID: "p1"}, ClientID: "c1", Price: 1000, Currency: KES, Date: NewDate(2024, 1, 1)}
	if err := sale.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sale.Commission = 50
	if err := sale.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField without agent, got %v", err)
	}

	sale.AgentID = "g1"
	if err := sale.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sale.Commission = -1
	if err := sale.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative commission, got %v", err)
	}
}

func TestExpense_Validate_USDNeedsRate(t *testing.T) {
	exp := &Expense{Meta: Meta{ProjectID: "p1"}, AccountID: "a1", Amount: 10, Currency: USD, Date: NewDate(2024, 1, 1)}
	if err := exp.Validate(); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	exp.Rate = decimal.NewFromInt(130)
	if err := exp.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvoice_Validate(t *testing.T) {
	inv := &Invoice{Meta: Meta{ProjectID: "p1"}, Amount: 10, Currency: KES, Date: NewDate(2024, 1, 1)}
	if err := inv.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestParty_Validate(t *testing.T) {
	p := &Party{Meta: Meta{Type: DocSupplier, ProjectID: "p1"}, Name: "Cement Ltd", Currency: KES}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Type = DocInvoice
	if err := p.Validate(); !errors.Is(err, ErrInvalidPartyKind) {
		t.Fatalf("expected ErrInvalidPartyKind, got %v", err)
	}

	p.Type = DocSupplier
	p.Name = "  "
	if err := p.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestPartyKind_Lookup(t *testing.T) {
	if PartyAccount.Lookup() != LookupByID {
		t.Error("accounts are fetched by id")
	}
	for _, k := range []PartyKind{PartyClient, PartySupplier, PartyAgent} {
		if k.Lookup() != LookupByIDAndType {
			t.Errorf("%s should be found by id and type", k)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"2024-03-05"`, `"2024-03-05"`},
		{`"2024-03-05T10:30:00Z"`, `"2024-03-05T10:30:00Z"`},
		{`"2024-03-05T13:30:00+03:00"`, `"2024-03-05T10:30:00Z"`},
		{`""`, `""`},
	}

	for _, tt := range tests {
		var d Date
		if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.in, err)
		}
		out, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.in, err)
		}
		if string(out) != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, out)
		}
	}

	var d Date
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMeta_JSONOmitsRev(t *testing.T) {
	p := Party{Meta: Meta{ID: "a1", Rev: "3", Type: DocAccount, State: StateActive, CreatedAt: time.Unix(0, 0).UTC()}, Name: "Cash", Currency: KES}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := body["Rev"]; ok {
		t.Error("rev must not be serialized")
	}
	if body["_id"] != "a1" || body["type"] != "account" {
		t.Errorf("unexpected header: %v", body)
	}
}
