package handler

import (
	"context"
	"net/http"

	"github.com/iho/estateledger/internal/adapter/http/dto"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

// ReportService is the subset of usecase.ReportUseCase the handler needs.
type ReportService interface {
	GetAccountTotals(ctx context.Context, projectID string) (*domain.AccountTotals, error)
	GenerateIncomeStatement(ctx context.Context, projectID string) (*domain.IncomeStatement, error)
}

// ProjectReconciler reconciles every party of a project.
type ProjectReconciler interface {
	ReconcileProject(ctx context.Context, projectID string) (*usecase.ReconciliationReport, error)
}

// ReportHandler serves project-wide reports.
type ReportHandler struct {
	reports        ReportService
	reconciler     ProjectReconciler
	defaultProject string
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService, defaultProject string) *ReportHandler {
	return &ReportHandler{reports: reports, defaultProject: defaultProject}
}

// WithReconciler enables the project reconciliation report.
func (h *ReportHandler) WithReconciler(r ProjectReconciler) *ReportHandler {
	h.reconciler = r
	return h
}

// Totals returns the project's account totals.
func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reports.GetAccountTotals(r.Context(), projectID(r, h.defaultProject))
	if err != nil {
		writeDomainError(w, "failed to compute account totals", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("totals", totals))
}

// IncomeStatement returns the project's income statement.
func (h *ReportHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := h.reports.GenerateIncomeStatement(r.Context(), projectID(r, h.defaultProject))
	if err != nil {
		writeDomainError(w, "failed to generate income statement", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("incomeStatement", stmt))
}

// Reconciliation compares every party's stored balance with its ledger.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	if h.reconciler == nil {
		writeError(w, http.StatusNotImplemented, "reconciliation report is not enabled", "")
		return
	}
	report, err := h.reconciler.ReconcileProject(r.Context(), projectID(r, h.defaultProject))
	if err != nil {
		writeDomainError(w, "failed to reconcile project", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("reconciliation", report))
}
