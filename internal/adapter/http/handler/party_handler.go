package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/estateledger/internal/adapter/http/dto"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

// PartyService is the subset of usecase.PartyUseCase the handler needs.
type PartyService interface {
	CreateParty(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error)
	ListParties(ctx context.Context, kind domain.PartyKind, input usecase.ListInput) ([]*domain.Party, error)
	GetPartyDetails(ctx context.Context, kind domain.PartyKind, id string) (*usecase.PartyDetails, error)
	UpdateParty(ctx context.Context, kind domain.PartyKind, id string, input usecase.UpdatePartyInput) (*domain.Party, error)
	ArchiveParty(ctx context.Context, kind domain.PartyKind, id string) (*domain.Party, error)
}

// Reconciler compares a party's stored balance with its ledger.
type Reconciler interface {
	Reconcile(ctx context.Context, kind domain.PartyKind, id string) (*domain.Reconciliation, error)
}

// PartyHandler serves one party kind: accounts, clients, suppliers or agents.
type PartyHandler struct {
	kind           domain.PartyKind
	parties        PartyService
	reconciler     Reconciler
	defaultProject string
}

// NewPartyHandler creates a PartyHandler for kind.
func NewPartyHandler(kind domain.PartyKind, parties PartyService, reconciler Reconciler, defaultProject string) *PartyHandler {
	return &PartyHandler{
		kind:           kind,
		parties:        parties,
		reconciler:     reconciler,
		defaultProject: defaultProject,
	}
}

// Create creates a party.
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ProjectID == "" {
		req.ProjectID = h.defaultProject
	}

	input, err := req.ToUseCaseInput(h.kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+string(h.kind), err.Error())
		return
	}

	party, err := h.parties.CreateParty(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create "+string(h.kind), err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK(string(h.kind), party))
}

// List lists the Active parties of a project.
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	input := listInput(r, h.defaultProject)

	parties, err := h.parties.ListParties(r.Context(), h.kind, input)
	if err != nil {
		writeDomainError(w, "failed to list "+string(h.kind)+"s", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("data", dto.NewList(parties, input.Limit, input.Offset)))
}

// Get returns the party's info, metrics and ledger.
func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+string(h.kind)+" ID", "")
		return
	}

	details, err := h.parties.GetPartyDetails(r.Context(), h.kind, id)
	if err != nil {
		writeDomainError(w, "failed to get "+string(h.kind), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(string(h.kind), details))
}

// Update changes a party's descriptive fields.
func (h *PartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+string(h.kind)+" ID", "")
		return
	}

	var req dto.UpdatePartyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+string(h.kind), err.Error())
		return
	}

	party, err := h.parties.UpdateParty(r.Context(), h.kind, id, input)
	if err != nil {
		writeDomainError(w, "failed to update "+string(h.kind), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(string(h.kind), party))
}

// Archive marks a party Inactive.
func (h *PartyHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	party, err := h.parties.ArchiveParty(r.Context(), h.kind, id)
	if err != nil {
		writeDomainError(w, "failed to archive "+string(h.kind), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(string(h.kind), party))
}

// Reconcile compares the stored balance with the reconstructed ledger.
func (h *PartyHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.reconciler.Reconcile(r.Context(), h.kind, id)
	if err != nil {
		writeDomainError(w, "failed to reconcile "+string(h.kind), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("reconciliation", result))
}
