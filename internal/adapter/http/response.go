package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"socialbooster/internal/core/domain"
)

// campaignResponse is the wire form of a campaign. Budget is a fixed
// two-decimal string so no precision is lost in JSON.
type campaignResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Platform  domain.Platform `json:"platform"`
	Budget    string          `json:"budget"`
	Status    domain.Status   `json:"status"`
	StartDate domain.Date     `json:"start_date"`
	EndDate   domain.Date     `json:"end_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:        c.ID,
		Name:      c.Name,
		Platform:  c.Platform,
		Budget:    c.Budget.StringFixed(2),
		Status:    c.Status,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type statsResponse struct {
	StatusCounts    map[domain.Status]int64     `json:"status_counts"`
	PlatformBudgets map[domain.Platform]float64 `json:"platform_budgets"`
	TotalBudget     float64                     `json:"total_budget"`
	TotalCampaigns  int64                       `json:"total_campaigns"`
}

func newStatsResponse(s *domain.Stats) statsResponse {
	resp := statsResponse{
		StatusCounts:    make(map[domain.Status]int64, len(s.StatusCounts)),
		PlatformBudgets: make(map[domain.Platform]float64, len(s.PlatformBudgets)),
		TotalBudget:     s.TotalBudget.InexactFloat64(),
		TotalCampaigns:  s.TotalCampaigns,
	}
	for k, v := range s.StatusCounts {
		resp.StatusCounts[k] = v
	}
	for k, v := range s.PlatformBudgets {
		resp.PlatformBudgets[k] = v.InexactFloat64()
	}
	return resp
}

type conversionResponse struct {
	CampaignID     int64              `json:"campaign_id"`
	CampaignName   string             `json:"campaign_name"`
	OriginalBudget float64            `json:"original_budget"`
	Currency       string             `json:"currency"`
	Conversions    map[string]float64 `json:"conversions"`
	ExchangeRates  map[string]float64 `json:"exchange_rates"`
}

func newConversionResponse(c *domain.Conversion) conversionResponse {
	resp := conversionResponse{
		CampaignID:     c.CampaignID,
		CampaignName:   c.CampaignName,
		OriginalBudget: c.OriginalBudget.InexactFloat64(),
		Currency:       c.Currency,
		Conversions:    make(map[string]float64, len(c.Amounts)),
		ExchangeRates:  make(map[string]float64, len(c.Rates)),
	}
	for k, v := range c.Amounts {
		resp.Conversions[k] = v.InexactFloat64()
	}
	for k, v := range c.Rates {
		resp.ExchangeRates[k] = v.InexactFloat64()
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// writeError maps use case errors to HTTP responses. Unknown errors are
// logged and hidden behind a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, domain.ErrCampaignNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found.")
	default:
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
