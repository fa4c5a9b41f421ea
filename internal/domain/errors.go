package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced document is absent or inactive.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when input fails validation.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when the store rejects a write (stale revision).
	ErrConflict = errors.New("conflict")
	// ErrPartialWrite is returned when a multi-document write failed midway and
	// could not be compensated.
	ErrPartialWrite = errors.New("partial write: manual correction required")
)

// Validation errors. All of them wrap ErrValidation.
var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidCurrency  = fmt.Errorf("%w: currency must be KES or USD", ErrValidation)
	ErrInvalidRate      = fmt.Errorf("%w: rate must be positive when currencies differ", ErrValidation)
	ErrInvalidPartyKind = fmt.Errorf("%w: party kind must be account, client, supplier or agent", ErrValidation)
	ErrInvalidTransType = fmt.Errorf("%w: transType must be deposit or withdraw", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: date must be ISO-8601", ErrValidation)
	ErrSameParty        = fmt.Errorf("%w: source and destination must differ", ErrValidation)
	ErrMissingField     = fmt.Errorf("%w: missing required field", ErrValidation)
)
