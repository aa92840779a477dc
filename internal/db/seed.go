package db

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
)

// Seed inserts one demo campaign per platform when the store is empty. It
// returns the number of campaigns created.
func Seed(ctx context.Context, repo port.CampaignRepository, now time.Time) (int, error) {
	existing, err := repo.List(ctx, port.ListFilter{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	start := domain.NewDate(now.Year(), now.Month(), now.Day())
	for i, platform := range domain.Platforms {
		status := domain.Statuses[i%len(domain.Statuses)]
		c := &domain.Campaign{
			Name:      fmt.Sprintf("%s launch %d", platform, now.Year()),
			Platform:  platform,
			Budget:    decimal.NewFromInt(int64(1000 * (i + 1))),
			Status:    status,
			StartDate: start,
			EndDate:   domain.Date{Time: start.AddDate(0, 1, 0)},
		}
		if err = repo.Create(ctx, c); err != nil {
			return i, fmt.Errorf("seed %s: %w", platform, err)
		}
	}
	return len(domain.Platforms), nil
}
