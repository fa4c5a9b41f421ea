package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/domain"
)

// SagaStep is one document write. Compensate undoes Do and may be nil when
// there is nothing to undo.
type SagaStep struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs a multi-document write as an ordered list of steps. The store has
// no cross-document transactions, so a failing step triggers the
// compensations of the steps already done, newest first.
type Saga struct {
	name    string
	steps   []SagaStep
	logger  zerolog.Logger
	metrics MetricsRecorder

	maxCompensateRetries uint64
}

// NewSaga creates an empty saga.
func NewSaga(name string, logger zerolog.Logger, metrics MetricsRecorder) *Saga {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Saga{
		name:                 name,
		logger:               logger,
		metrics:              metrics,
		maxCompensateRetries: 3,
	}
}

// Add appends a step.
func (s *Saga) Add(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps in order. When a step fails and every compensation
// succeeds, the step's error is returned and prior state is restored. When a
// compensation fails too, the error wraps domain.ErrPartialWrite.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		err := step.Do(ctx)
		if err == nil {
			continue
		}

		s.logger.Warn().Err(err).
			Str("saga", s.name).
			Str("step", step.Name).
			Msg("saga step failed, compensating")

		if cerr := s.compensate(ctx, s.steps[:i]); cerr != nil {
			s.metrics.PartialWrite(s.name)
			s.logger.Error().Err(cerr).
				Str("saga", s.name).
				Str("step", step.Name).
				Msg("compensation failed, manual correction required")
			return fmt.Errorf("%w: %s at %s: %w", domain.ErrPartialWrite, s.name, step.Name, errors.Join(err, cerr))
		}
		return err
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []SagaStep) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}

		b := backoff.WithContext(backoff.WithMaxRetries(compensationBackOff(), s.maxCompensateRetries), ctx)
		err := backoff.Retry(func() error {
			err := step.Compensate(ctx)
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
				return backoff.Permanent(err)
			}
			return err
		}, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}

func compensationBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return b
}

// balanceStep persists party with delta applied. Its compensation re-reads
// the party so it applies the inverse delta on top of the latest revision.
func balanceStep(store DocumentStore, party *domain.Party, delta domain.BalanceDelta, now time.Time) SagaStep {
	return SagaStep{
		Name: fmt.Sprintf("%s %s balance", delta.Kind, delta.PartyID),
		Do: func(ctx context.Context) error {
			updated := *party
			delta.Apply(&updated)
			updated.Touch(now)
			if err := save(ctx, store, &updated); err != nil {
				return err
			}
			*party = updated
			return nil
		},
		Compensate: func(ctx context.Context) error {
			return applyDelta(ctx, store, delta.Kind, delta.PartyID, delta.Inverse(), now)
		},
	}
}

// applyDelta reads the latest revision of a party and writes it back with
// delta applied. It accepts inactive parties.
func applyDelta(ctx context.Context, store DocumentStore, kind domain.PartyKind, id string, delta domain.BalanceDelta, now time.Time) error {
	p := &domain.Party{}
	if err := load(ctx, store, id, kind.DocType(), p); err != nil {
		return err
	}
	delta.Apply(p)
	p.Touch(now)
	return save(ctx, store, p)
}

// documentStep persists v. Compensation archives a freshly created document;
// other writes are not undone.
func documentStep(store DocumentStore, name string, v document) SagaStep {
	created := v.Header().Rev == ""
	step := SagaStep{
		Name: name,
		Do: func(ctx context.Context) error {
			return save(ctx, store, v)
		},
	}
	if created {
		step.Compensate = func(ctx context.Context) error {
			v.Header().State = domain.StateInactive
			return save(ctx, store, v)
		}
	}
	return step
}
