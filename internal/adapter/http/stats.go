package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"socialbooster/internal/core/domain"
)

// handleStats returns the dashboard aggregation: campaign count per status,
// budget per platform and the overall totals. Statuses and platforms
// without campaigns are omitted.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newStatsResponse(stats))
}

// handleConvertBudget converts a campaign budget using live exchange rates.
// An unknown campaign yields 404. Any failure to obtain rates yields 500
// with the cause in the "error" field and its classification in "reason".
func (h *Handler) handleConvertBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	conv, err := h.svc.ConvertBudget(r.Context(), id)
	var rateErr *domain.RateError
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, newConversionResponse(conv))
	case errors.As(err, &rateErr):
		h.logger.Warn("exchange rate lookup failed",
			slog.Int64("campaign_id", id),
			slog.String("reason", string(rateErr.Kind)),
			slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "Failed to fetch exchange rates: " + err.Error(),
			"reason": string(rateErr.Kind),
		})
	default:
		h.writeError(w, r, err)
	}
}
