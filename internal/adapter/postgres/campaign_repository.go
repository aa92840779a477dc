package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
)

const campaignColumns = `id, name, platform, budget, status, start_date, end_date, created_at, updated_at`

// CampaignRepository implements port.CampaignRepository on top of
// database/sql. In production the *sql.DB wraps a pgx pool.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Platform,
		&c.Budget,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// Create inserts c and fills in the generated id and timestamps. Both
// timestamps come from the same now() so they are equal on creation.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO campaigns (name, platform, budget, status, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now(), now())
        RETURNING id, created_at, updated_at`,
		c.Name, string(c.Platform), c.Budget, string(c.Status), c.StartDate, c.EndDate,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// Get returns a campaign by id, or nil when no row matches.
func (r *CampaignRepository) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return &c, nil
}

// List returns every campaign matching filter, newest first.
func (r *CampaignRepository) List(ctx context.Context, filter port.ListFilter) ([]domain.Campaign, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Platform != "" {
		args = append(args, string(filter.Platform))
		where = append(where, fmt.Sprintf("platform = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR platform ILIKE $%[1]d)", len(args)))
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]domain.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// Update writes every mutable column of c and refreshes updated_at.
func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) (bool, error) {
	err := r.db.QueryRowContext(ctx, `
        UPDATE campaigns
        SET name = $1, platform = $2, budget = $3, status = $4, start_date = $5, end_date = $6, updated_at = now()
        WHERE id = $7
        RETURNING created_at, updated_at`,
		c.Name, string(c.Platform), c.Budget, string(c.Status), c.StartDate, c.EndDate, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update campaign %d: %w", c.ID, err)
	}
	return true, nil
}

// Delete removes a campaign by id.
func (r *CampaignRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete campaign %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats aggregates all campaigns: count per status, budget per platform and
// the overall totals. Groups without rows are absent from the maps.
func (r *CampaignRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{
		StatusCounts:    make(map[domain.Status]int64),
		PlatformBudgets: make(map[domain.Platform]decimal.Decimal),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, count(id) FROM campaigns GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	for rows.Next() {
		var (
			status domain.Status
			count  int64
		)
		if err = rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `SELECT platform, COALESCE(sum(budget), 0) FROM campaigns GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("platform budgets: %w", err)
	}
	for rows.Next() {
		var (
			platform domain.Platform
			total    decimal.Decimal
		)
		if err = rows.Scan(&platform, &total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan platform budget: %w", err)
		}
		stats.PlatformBudgets[platform] = total
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("platform budgets: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT COALESCE(sum(budget), 0), count(*) FROM campaigns`).
		Scan(&stats.TotalBudget, &stats.TotalCampaigns)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	return stats, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
