package usecase

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
)

// BaseCurrency is the currency campaign budgets are denominated in.
const BaseCurrency = "USD"

// targetCurrencies are reported by ConvertBudget in this order.
var targetCurrencies = []string{"EUR", "GBP", "INR"}

// fallbackRates are used for currencies the upstream omits. They are
// approximate and not kept in sync with the market.
var fallbackRates = map[string]float64{
	"EUR": 0.90,
	"GBP": 0.78,
	"INR": 83.00,
}

var writableFields = []string{"name", "platform", "budget", "start_date", "end_date"}

// CampaignUseCase implements port.CampaignUseCase on top of a repository
// and an exchange-rate provider.
type CampaignUseCase struct {
	repo   port.CampaignRepository
	rates  port.RateProvider
	logger *slog.Logger
}

// NewCampaignUseCase creates a new usecase.
func NewCampaignUseCase(repo port.CampaignRepository, rates port.RateProvider, logger *slog.Logger) *CampaignUseCase {
	return &CampaignUseCase{repo: repo, rates: rates, logger: logger}
}

// List returns all campaigns matching filter, newest first, unpaginated.
func (u *CampaignUseCase) List(ctx context.Context, filter port.ListFilter) ([]domain.Campaign, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, filter)
}

// Create validates in and stores a new campaign. Status defaults to Active.
func (u *CampaignUseCase) Create(ctx context.Context, in port.CampaignInput) (*domain.Campaign, error) {
	if err := validateInput(in, writableFields...); err != nil {
		return nil, err
	}
	c := &domain.Campaign{Status: domain.StatusActive}
	apply(c, in)
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a campaign by id.
func (u *CampaignUseCase) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCampaignNotFound
	}
	return c, nil
}

// Update replaces the writable fields of a campaign. Status keeps its
// stored value when omitted.
func (u *CampaignUseCase) Update(ctx context.Context, id int64, in port.CampaignInput) (*domain.Campaign, error) {
	return u.save(ctx, id, in, writableFields...)
}

// Patch applies only the fields present in in.
func (u *CampaignUseCase) Patch(ctx context.Context, id int64, in port.CampaignInput) (*domain.Campaign, error) {
	return u.save(ctx, id, in)
}

// save looks the campaign up before validating so an unknown id is
// reported as not found regardless of the body.
func (u *CampaignUseCase) save(ctx context.Context, id int64, in port.CampaignInput, required ...string) (*domain.Campaign, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = validateInput(in, required...); err != nil {
		return nil, err
	}
	apply(c, in)
	ok, err := u.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return c, nil
}

// Delete removes a campaign.
func (u *CampaignUseCase) Delete(ctx context.Context, id int64) error {
	ok, err := u.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCampaignNotFound
	}
	return nil
}

// Stats returns the dashboard aggregation.
func (u *CampaignUseCase) Stats(ctx context.Context) (*domain.Stats, error) {
	return u.repo.Stats(ctx)
}

// ConvertBudget reports the campaign budget in USD and the target
// currencies. Currencies missing from the upstream answer use fallback
// rates; a failed lookup is returned as is and nothing falls back.
func (u *CampaignUseCase) ConvertBudget(ctx context.Context, id int64) (*domain.Conversion, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upstream, err := u.rates.Rates(ctx)
	if err != nil {
		return nil, err
	}

	conv := &domain.Conversion{
		CampaignID:     c.ID,
		CampaignName:   c.Name,
		OriginalBudget: c.Budget,
		Currency:       BaseCurrency,
		Amounts:        map[string]decimal.Decimal{BaseCurrency: c.Budget.Round(2)},
		Rates:          make(map[string]decimal.Decimal, len(targetCurrencies)),
	}
	for _, cur := range targetCurrencies {
		rate, ok := upstream[cur]
		if !ok {
			rate = fallbackRates[cur]
			u.logger.Warn("exchange rate missing, using fallback",
				slog.String("currency", cur), slog.Float64("rate", rate))
		}
		r := decimal.NewFromFloat(rate)
		conv.Amounts[cur] = c.Budget.Mul(r).Round(2)
		conv.Rates[cur] = r.Round(4)
	}
	return conv, nil
}
