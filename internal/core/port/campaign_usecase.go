package port

import (
	"context"

	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
)

// CampaignUseCase defines the business operations exposed over HTTP. This
// interface represents the primary port into the application domain.
type CampaignUseCase interface {
	// List returns every campaign matching filter, newest first. The result
	// is never paginated.
	List(ctx context.Context, filter ListFilter) ([]domain.Campaign, error)

	// Create validates in and stores a new campaign. Status defaults to
	// Active. Invalid input yields *domain.ValidationError.
	Create(ctx context.Context, in CampaignInput) (*domain.Campaign, error)

	// Get returns a campaign or domain.ErrCampaignNotFound.
	Get(ctx context.Context, id int64) (*domain.Campaign, error)

	// Update replaces a campaign. All fields except status are required.
	Update(ctx context.Context, id int64, in CampaignInput) (*domain.Campaign, error)

	// Patch applies only the supplied fields.
	Patch(ctx context.Context, id int64, in CampaignInput) (*domain.Campaign, error)

	// Delete removes a campaign or returns domain.ErrCampaignNotFound.
	Delete(ctx context.Context, id int64) error

	// Stats returns the dashboard aggregation over all campaigns.
	Stats(ctx context.Context) (*domain.Stats, error)

	// ConvertBudget converts the campaign budget from USD into other
	// currencies. A failed rate lookup yields *domain.RateError.
	ConvertBudget(ctx context.Context, id int64) (*domain.Conversion, error)
}

// CampaignInput is the writable part of a campaign as supplied by a client.
// Nil fields were not supplied. Enumerated values are kept as raw strings so
// validation can report them.
type CampaignInput struct {
	Name      *string          `json:"name" validate:"omitempty,max=200"`
	Platform  *string          `json:"platform" validate:"omitempty,oneof='Google Ads' Meta LinkedIn Twitter TikTok"`
	Budget    *decimal.Decimal `json:"budget"`
	Status    *string          `json:"status" validate:"omitempty,oneof=Active Paused Completed"`
	StartDate *domain.Date     `json:"start_date"`
	EndDate   *domain.Date     `json:"end_date"`
}
