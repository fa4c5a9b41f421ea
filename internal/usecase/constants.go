package usecase

import "time"

const (
	// DefaultListLimit is used when a list request does not set a limit.
	DefaultListLimit = 20
	// MaxListLimit caps list requests.
	MaxListLimit = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultReportCacheTTL is how long a cached report stays valid when no
	// event in its project is written.
	DefaultReportCacheTTL = 10 * time.Minute
)

// ListInput is the pagination shared by every list operation.
type ListInput struct {
	ProjectID string
	Limit     int
	Offset    int
}

func (in ListInput) normalize() ListInput {
	if in.Limit <= 0 {
		in.Limit = DefaultListLimit
	}
	if in.Limit > MaxListLimit {
		in.Limit = MaxListLimit
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	return in
}
