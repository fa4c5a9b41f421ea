package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/estateledger/internal/adapter/http/dto"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

// eventOps binds the create/read/update/archive methods of one event use
// case, with In the create input and E the stored event.
type eventOps[In, E any] struct {
	create  func(ctx context.Context, input In) (E, error)
	get     func(ctx context.Context, id string) (E, error)
	list    func(ctx context.Context, input usecase.ListInput) ([]E, error)
	update  func(ctx context.Context, id string, input In) (E, error)
	archive func(ctx context.Context, id string) (E, error)
}

// EventHandler serves one event type.
type EventHandler[In, E any] struct {
	name           string
	events         eventOps[In, E]
	parse          func(r *http.Request, defaultProject string) (In, error)
	defaultProject string
}

// Create records a new event and applies its balance effects.
func (h *EventHandler[In, E]) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parse(r, h.defaultProject)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+h.name, err.Error())
		return
	}

	event, err := h.events.create(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create "+h.name, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK(h.name, event))
}

// List lists the Active events of a project.
func (h *EventHandler[In, E]) List(w http.ResponseWriter, r *http.Request) {
	input := listInput(r, h.defaultProject)

	events, err := h.events.list(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to list "+h.name+"s", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("data", dto.NewList(events, input.Limit, input.Offset)))
}

// Get returns one event.
func (h *EventHandler[In, E]) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+h.name+" ID", "")
		return
	}

	event, err := h.events.get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get "+h.name, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(h.name, map[string]any{"info": event}))
}

// Update replaces an event's fields. Balances are left as they are.
func (h *EventHandler[In, E]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+h.name+" ID", "")
		return
	}

	input, err := h.parse(r, h.defaultProject)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+h.name, err.Error())
		return
	}

	event, err := h.events.update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, "failed to update "+h.name, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(h.name, event))
}

// Archive marks an event Inactive.
func (h *EventHandler[In, E]) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.events.archive(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to archive "+h.name, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(h.name, event))
}

// request is implemented by the event DTOs.
type request[In any] interface {
	ToUseCaseInput() (In, error)
}

// parser decodes a body into R and converts it, filling in the default
// project when the body names none.
func parser[R any, PR interface {
	*R
	request[In]
}, In any](project func(*In) *string) func(*http.Request, string) (In, error) {
	return func(r *http.Request, defaultProject string) (In, error) {
		var zero In
		req := PR(new(R))
		if err := decodeJSON(r, req); err != nil {
			return zero, err
		}
		in, err := req.ToUseCaseInput()
		if err != nil {
			return zero, err
		}
		if p := project(&in); *p == "" {
			*p = defaultProject
		}
		return in, nil
	}
}

// TransactionHandler serves /transactions.
type TransactionHandler = EventHandler[usecase.CreateTransactionInput, *domain.Transaction]

// SaleHandler serves /sales.
type SaleHandler = EventHandler[usecase.CreateSaleInput, *domain.Sale]

// InvoiceHandler serves /invoices.
type InvoiceHandler = EventHandler[usecase.CreateInvoiceInput, *domain.Invoice]

// ExpenseHandler serves /expenses.
type ExpenseHandler = EventHandler[usecase.CreateExpenseInput, *domain.Expense]

// TransactionService is the subset of usecase.TransactionUseCase the handler
// needs.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListInput) ([]*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	ArchiveTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(svc TransactionService, defaultProject string) *TransactionHandler {
	return &TransactionHandler{
		name: "transaction",
		events: eventOps[usecase.CreateTransactionInput, *domain.Transaction]{
			create:  svc.CreateTransaction,
			get:     svc.GetTransaction,
			list:    svc.ListTransactions,
			update:  svc.UpdateTransaction,
			archive: svc.ArchiveTransaction,
		},
		parse:          parser[dto.TransactionRequest](func(in *usecase.CreateTransactionInput) *string { return &in.ProjectID }),
		defaultProject: defaultProject,
	}
}

// SaleService is the subset of usecase.SaleUseCase the handler needs.
type SaleService interface {
	CreateSale(ctx context.Context, input usecase.CreateSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, input usecase.ListInput) ([]*domain.Sale, error)
	UpdateSale(ctx context.Context, id string, input usecase.CreateSaleInput) (*domain.Sale, error)
	ArchiveSale(ctx context.Context, id string) (*domain.Sale, error)
}

// NewSaleHandler creates a SaleHandler.
func NewSaleHandler(svc SaleService, defaultProject string) *SaleHandler {
	return &SaleHandler{
		name: "sale",
		events: eventOps[usecase.CreateSaleInput, *domain.Sale]{
			create:  svc.CreateSale,
			get:     svc.GetSale,
			list:    svc.ListSales,
			update:  svc.UpdateSale,
			archive: svc.ArchiveSale,
		},
		parse:          parser[dto.SaleRequest](func(in *usecase.CreateSaleInput) *string { return &in.ProjectID }),
		defaultProject: defaultProject,
	}
}

// InvoiceService is the subset of usecase.InvoiceUseCase the handler needs.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input usecase.CreateInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, input usecase.ListInput) ([]*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, input usecase.CreateInvoiceInput) (*domain.Invoice, error)
	ArchiveInvoice(ctx context.Context, id string) (*domain.Invoice, error)
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(svc InvoiceService, defaultProject string) *InvoiceHandler {
	return &InvoiceHandler{
		name: "invoice",
		events: eventOps[usecase.CreateInvoiceInput, *domain.Invoice]{
			create:  svc.CreateInvoice,
			get:     svc.GetInvoice,
			list:    svc.ListInvoices,
			update:  svc.UpdateInvoice,
			archive: svc.ArchiveInvoice,
		},
		parse:          parser[dto.InvoiceRequest](func(in *usecase.CreateInvoiceInput) *string { return &in.ProjectID }),
		defaultProject: defaultProject,
	}
}

// ExpenseService is the subset of usecase.ExpenseUseCase the handler needs.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	GetExpense(ctx context.Context, id string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, input usecase.ListInput) ([]*domain.Expense, error)
	UpdateExpense(ctx context.Context, id string, input usecase.CreateExpenseInput) (*domain.Expense, error)
	ArchiveExpense(ctx context.Context, id string) (*domain.Expense, error)
}

// NewExpenseHandler creates an ExpenseHandler.
func NewExpenseHandler(svc ExpenseService, defaultProject string) *ExpenseHandler {
	return &ExpenseHandler{
		name: "expense",
		events: eventOps[usecase.CreateExpenseInput, *domain.Expense]{
			create:  svc.CreateExpense,
			get:     svc.GetExpense,
			list:    svc.ListExpenses,
			update:  svc.UpdateExpense,
			archive: svc.ArchiveExpense,
		},
		parse:          parser[dto.ExpenseRequest](func(in *usecase.CreateExpenseInput) *string { return &in.ProjectID }),
		defaultProject: defaultProject,
	}
}
