package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
)

const maxBodyBytes = 1 << 20

// handleList writes every campaign as a flat JSON array, newest first. The
// optional status, platform and search query parameters narrow the result.
// There is no pagination.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := port.ListFilter{
		Status:   domain.Status(q.Get("status")),
		Platform: domain.Platform(q.Get("platform")),
		Search:   q.Get("search"),
	}
	campaigns, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		resp = append(resp, newCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCampaignInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newCampaignResponse(*c))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCampaignResponse(*c))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.svc.Update)
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.svc.Patch)
}

type saveFunc func(ctx context.Context, id int64, in port.CampaignInput) (*domain.Campaign, error)

func (h *Handler) save(w http.ResponseWriter, r *http.Request, fn saveFunc) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	in, err := decodeCampaignInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := fn(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCampaignResponse(*c))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// campaignID parses the {id} path parameter. Ids that overflow int64 cannot
// exist and are reported as not found.
func campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// decodeCampaignInput reads the request body field by field so every
// unparsable value is reported, not only the first one. Unknown and
// read-only fields are ignored.
func decodeCampaignInput(r *http.Request) (port.CampaignInput, error) {
	var in port.CampaignInput

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return in, fmt.Errorf("read body: %w", err)
	}
	verr := domain.NewValidationError()
	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(body)) > 0 {
		if err = json.Unmarshal(body, &fields); err != nil {
			verr.Add("non_field_errors", "JSON parse error - "+err.Error())
			return in, verr
		}
	}

	in.Name = decodeString(fields, "name", verr)
	in.Platform = decodeString(fields, "platform", verr)
	in.Status = decodeString(fields, "status", verr)

	if raw, ok := present(fields, "budget", verr); ok {
		var d decimal.Decimal
		if err = d.UnmarshalJSON(raw); err != nil {
			verr.Add("budget", "A valid number is required.")
		} else {
			in.Budget = &d
		}
	}
	in.StartDate = decodeDate(fields, "start_date", verr)
	in.EndDate = decodeDate(fields, "end_date", verr)

	return in, verr.OrNil()
}

// present reports whether field was sent with a non-null value. An explicit
// null is recorded as a validation error.
func present(fields map[string]json.RawMessage, field string, verr *domain.ValidationError) (json.RawMessage, bool) {
	raw, ok := fields[field]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		verr.Add(field, "This field may not be null.")
		return nil, false
	}
	return raw, true
}

func decodeString(fields map[string]json.RawMessage, field string, verr *domain.ValidationError) *string {
	raw, ok := present(fields, field, verr)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.Add(field, "Not a valid string.")
		return nil
	}
	return &s
}

func decodeDate(fields map[string]json.RawMessage, field string, verr *domain.ValidationError) *domain.Date {
	raw, ok := present(fields, field, verr)
	if !ok {
		return nil
	}
	var d domain.Date
	if err := d.UnmarshalJSON(raw); err != nil {
		verr.Add(field, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		return nil
	}
	return &d
}
