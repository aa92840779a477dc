package port

import (
	"context"

	"socialbooster/internal/core/domain"
)

// CampaignRepository defines the persistence layer for campaigns. It is an
// outbound port in hexagonal architecture. Identifiers and timestamps are
// assigned by the implementation.
type CampaignRepository interface {
	// Create stores c and fills in its ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, c *domain.Campaign) error
	// Get returns the campaign with the given id, or nil when it does not exist.
	Get(ctx context.Context, id int64) (*domain.Campaign, error)
	// List returns campaigns matching filter ordered by created_at descending.
	List(ctx context.Context, filter ListFilter) ([]domain.Campaign, error)
	// Update overwrites the mutable fields of c and refreshes UpdatedAt. It
	// reports false when the row no longer exists.
	Update(ctx context.Context, c *domain.Campaign) (bool, error)
	// Delete removes the campaign. It reports false when nothing was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
	// Stats aggregates all campaigns.
	Stats(ctx context.Context) (*domain.Stats, error)
}

// ListFilter narrows List. Zero values disable the corresponding filter.
type ListFilter struct {
	Status   domain.Status
	Platform domain.Platform
	// Search matches name or platform case-insensitively.
	Search string
}

// RateProvider fetches exchange rates relative to USD.
type RateProvider interface {
	// Rates returns the "rates" object of the upstream response keyed by
	// currency code. A nil map with a nil error means the upstream answered
	// without a rates object.
	Rates(ctx context.Context) (map[string]float64, error)
}
