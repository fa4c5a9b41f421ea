package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/domain"
)

// eventBase holds what every event use case shares.
type eventBase struct {
	store   DocumentStore
	idGen   IDGenerator
	reports ReportInvalidator
	logger  zerolog.Logger
	metrics MetricsRecorder
}

func newEventBase(store DocumentStore, idGen IDGenerator, reports ReportInvalidator, logger zerolog.Logger, metrics MetricsRecorder) eventBase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return eventBase{
		store:   store,
		idGen:   idGen,
		reports: reports,
		logger:  logger,
		metrics: metrics,
	}
}

func (b eventBase) newMeta(docType domain.DocType, projectID string, now time.Time) domain.Meta {
	return domain.Meta{
		ID:        b.idGen.Generate(),
		Type:      docType,
		State:     domain.StateActive,
		ProjectID: projectID,
		CreatedAt: now,
	}
}

func (b eventBase) saga(name string) *Saga {
	return NewSaga(name, b.logger, b.metrics)
}

func (b eventBase) created(ctx context.Context, h *domain.Meta) {
	b.metrics.EventCreated(h.Type)
	b.invalidate(ctx, h.ProjectID)
	b.logger.Info().
		Str("event_type", string(h.Type)).
		Str("event_id", h.ID).
		Str("project_id", h.ProjectID).
		Msg("event created")
}

func (b eventBase) invalidate(ctx context.Context, projectID string) {
	if b.reports != nil {
		b.reports.InvalidateProject(ctx, projectID)
	}
}

// replaceHeader carries the store-managed fields of current over to next so an
// update can never change identity, state or creation time.
func replaceHeader(next, current *domain.Meta, now time.Time) {
	next.ID = current.ID
	next.Rev = current.Rev
	next.Type = current.Type
	next.State = current.State
	next.CreatedAt = current.CreatedAt
	next.Touch(now)
}

// warnUnreconciled logs that money fields changed through update without a
// balance adjustment.
func (b eventBase) warnUnreconciled(h *domain.Meta) {
	b.logger.Warn().
		Str("event_type", string(h.Type)).
		Str("event_id", h.ID).
		Msg("money fields changed by update; balance not reconciled")
}

// archive marks an event Inactive. When the type's policy reverses balances,
// reverse supplies the delta and its party write runs first so a failed event
// write can be compensated.
func (b eventBase) archive(ctx context.Context, v document, reverse func() (*domain.BalanceDelta, error)) error {
	h := v.Header()
	now := time.Now().UTC()
	policy := h.Type.ArchivePolicy()

	saga := b.saga("archive " + string(h.Type))
	if policy.ReversesBalanceOnArchive && reverse != nil {
		delta, err := reverse()
		if err != nil {
			return err
		}
		saga.Add(SagaStep{
			Name: "reverse " + delta.PartyID + " balance",
			Do: func(ctx context.Context) error {
				return applyDelta(ctx, b.store, delta.Kind, delta.PartyID, *delta, now)
			},
			Compensate: func(ctx context.Context) error {
				return applyDelta(ctx, b.store, delta.Kind, delta.PartyID, delta.Inverse(), now)
			},
		})
	}

	h.State = domain.StateInactive
	h.Touch(now)
	saga.Add(documentStep(b.store, string(h.Type), v))

	if err := saga.Run(ctx); err != nil {
		return err
	}

	b.metrics.EventArchived(h.Type, policy.ReversesBalanceOnArchive)
	b.invalidate(ctx, h.ProjectID)
	b.logger.Info().
		Str("event_type", string(h.Type)).
		Str("event_id", h.ID).
		Bool("reversed", policy.ReversesBalanceOnArchive).
		Msg("event archived")
	return nil
}
