package domain

import "github.com/shopspring/decimal"

// Stats is the dashboard summary over all campaigns. Maps only contain keys
// for statuses and platforms that have at least one campaign.
type Stats struct {
	StatusCounts    map[Status]int64
	PlatformBudgets map[Platform]decimal.Decimal
	TotalBudget     decimal.Decimal
	TotalCampaigns  int64
}

// Conversion is a campaign budget expressed in several currencies.
type Conversion struct {
	CampaignID     int64
	CampaignName   string
	OriginalBudget decimal.Decimal
	Currency       string
	// Amounts and Rates are keyed by ISO currency code. Rates has no entry
	// for the base currency.
	Amounts map[string]decimal.Decimal
	Rates   map[string]decimal.Decimal
}
