package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/domain"
)

// PartyUseCase handles accounts, clients, suppliers and agents.
type PartyUseCase struct {
	store  DocumentStore
	idGen  IDGenerator
	ledger *LedgerUseCase
	logger zerolog.Logger
}

// NewPartyUseCase creates a new PartyUseCase.
func NewPartyUseCase(store DocumentStore, idGen IDGenerator, ledger *LedgerUseCase, logger zerolog.Logger) *PartyUseCase {
	return &PartyUseCase{
		store:  store,
		idGen:  idGen,
		ledger: ledger,
		logger: logger,
	}
}

// CreatePartyInput represents input for creating a party. OpeningBalance is
// the starting balance in Currency.
type CreatePartyInput struct {
	Kind           domain.PartyKind
	ProjectID      string
	Name           string
	PhoneNumber    string
	Currency       domain.Currency
	OpeningBalance int64
}

// CreateParty creates a new Active party.
func (uc *PartyUseCase) CreateParty(ctx context.Context, input CreatePartyInput) (*domain.Party, error) {
	now := time.Now().UTC()

	party := &domain.Party{
		Meta: domain.Meta{
			ID:        uc.idGen.Generate(),
			Type:      input.Kind.DocType(),
			State:     domain.StateActive,
			ProjectID: input.ProjectID,
			CreatedAt: now,
		},
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Balance:     input.OpeningBalance,
		Currency:    input.Currency,
	}
	if err := party.Validate(); err != nil {
		return nil, err
	}

	if err := save(ctx, uc.store, party); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("party_kind", string(input.Kind)).
		Str("party_id", party.ID).
		Str("project_id", party.ProjectID).
		Msg("party created")
	return party, nil
}

// GetParty retrieves a party of the given kind by ID, archived or not.
func (uc *PartyUseCase) GetParty(ctx context.Context, kind domain.PartyKind, id string) (*domain.Party, error) {
	party := &domain.Party{}
	if err := load(ctx, uc.store, id, kind.DocType(), party); err != nil {
		return nil, err
	}
	return party, nil
}

// ListParties lists Active parties of one kind in a project.
func (uc *PartyUseCase) ListParties(ctx context.Context, kind domain.PartyKind, input ListInput) ([]*domain.Party, error) {
	return listActive[domain.Party](ctx, uc.store, kind.DocType(), input)
}

// UpdatePartyInput represents the editable fields of a party. Nil fields are
// left unchanged.
type UpdatePartyInput struct {
	Name        *string
	PhoneNumber *string
	Currency    *domain.Currency
}

// UpdateParty changes descriptive fields. The balance is never touched here.
func (uc *PartyUseCase) UpdateParty(ctx context.Context, kind domain.PartyKind, id string, input UpdatePartyInput) (*domain.Party, error) {
	party := &domain.Party{}
	if err := loadActive(ctx, uc.store, id, kind.DocType(), party); err != nil {
		return nil, err
	}

	if input.Name != nil {
		party.Name = *input.Name
	}
	if input.PhoneNumber != nil {
		party.PhoneNumber = *input.PhoneNumber
	}
	if input.Currency != nil && *input.Currency != party.Currency {
		uc.logger.Warn().
			Str("party_id", party.ID).
			Str("from", string(party.Currency)).
			Str("to", string(*input.Currency)).
			Msg("party currency changed; stored balance is not converted")
		party.Currency = *input.Currency
	}
	if err := party.Validate(); err != nil {
		return nil, err
	}

	party.Touch(time.Now().UTC())
	if err := save(ctx, uc.store, party); err != nil {
		return nil, err
	}
	return party, nil
}

// ArchiveParty marks a party Inactive. Events referencing it are kept.
func (uc *PartyUseCase) ArchiveParty(ctx context.Context, kind domain.PartyKind, id string) (*domain.Party, error) {
	party := &domain.Party{}
	if err := loadActive(ctx, uc.store, id, kind.DocType(), party); err != nil {
		return nil, err
	}

	party.State = domain.StateInactive
	party.Touch(time.Now().UTC())
	if err := save(ctx, uc.store, party); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("party_kind", string(kind)).
		Str("party_id", id).
		Msg("party archived")
	return party, nil
}

// PartyMetrics summarizes a party's ledger next to its stored balance.
type PartyMetrics struct {
	Balance          int64  `json:"balance"`
	LedgerBalance    int64  `json:"ledgerBalance"`
	TotalDebit       int64  `json:"totalDebit"`
	TotalCredit      int64  `json:"totalCredit"`
	Entries          int    `json:"entries"`
	TotalCommissions *int64 `json:"totalCommissions,omitempty"`
}

// PartyDetails is the info, metrics and ledger of one party.
type PartyDetails struct {
	Info    *domain.Party  `json:"info"`
	Metrics PartyMetrics   `json:"metrics"`
	Ledger  *domain.Ledger `json:"ledger"`
}

// GetPartyDetails reconstructs the party's ledger. Archived parties are
// reported as not found.
func (uc *PartyUseCase) GetPartyDetails(ctx context.Context, kind domain.PartyKind, id string) (*PartyDetails, error) {
	party, ledger, err := uc.ledger.build(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	return &PartyDetails{
		Info: party,
		Metrics: PartyMetrics{
			Balance:          party.Balance,
			LedgerBalance:    ledger.Closing(),
			TotalDebit:       ledger.Totals.TotalDebit,
			TotalCredit:      ledger.Totals.TotalCredit,
			Entries:          len(ledger.Entries),
			TotalCommissions: ledger.Totals.TotalCommissions,
		},
		Ledger: ledger,
	}, nil
}
