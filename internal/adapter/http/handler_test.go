package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialbooster/internal/adapter/usecase"
	"socialbooster/internal/config/configs"
	"socialbooster/internal/core/domain"
	"socialbooster/internal/core/port"
	"socialbooster/internal/core/port/mocks"
)

// memRepo is an in-memory port.CampaignRepository. Every write advances a
// fake clock by one second so ordering by created_at is deterministic.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	now    time.Time
	rows   map[int64]domain.Campaign
}

func newMemRepo() *memRepo {
	return &memRepo{
		now:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		rows: make(map[int64]domain.Campaign),
	}
}

func (m *memRepo) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.rows[c.ID] = *c
	return nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memRepo) List(_ context.Context, f port.ListFilter) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Campaign, 0, len(m.rows))
	for _, c := range m.rows {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Platform != "" && c.Platform != f.Platform {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name+" "+string(c.Platform)), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) Update(_ context.Context, c *domain.Campaign) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.rows[c.ID]
	if !ok {
		return false, nil
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = m.tick()
	m.rows[c.ID] = *c
	return true, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

func (m *memRepo) Stats(_ context.Context) (*domain.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &domain.Stats{
		StatusCounts:    map[domain.Status]int64{},
		PlatformBudgets: map[domain.Platform]decimal.Decimal{},
	}
	for _, c := range m.rows {
		s.StatusCounts[c.Status]++
		s.PlatformBudgets[c.Platform] = s.PlatformBudgets[c.Platform].Add(c.Budget)
		s.TotalBudget = s.TotalBudget.Add(c.Budget)
		s.TotalCampaigns++
	}
	return s, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type testServer struct {
	repo    *memRepo
	rates   *mocks.MockRateProvider
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemRepo()
	rates := mocks.NewMockRateProvider(t)
	svc := usecase.NewCampaignUseCase(repo, rates, logger)
	cfg := configs.HTTP{
		AllowedHosts: []string{"example.com"},
		CORSOrigins:  []string{"http://localhost:3000"},
	}
	h := NewHandler(svc, pingFunc(func(context.Context) error { return nil }), cfg, logger)
	return &testServer{repo: repo, rates: rates, handler: h.Router()}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const validBody = `{"name":"Spring","platform":"Meta","budget":1000.00,"start_date":"2025-03-01","end_date":"2025-03-31"}`

func TestCreateCampaign(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/campaigns/", validBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, rec)
	assert.NotNil(t, got["id"])
	assert.Equal(t, "Spring", got["name"])
	assert.Equal(t, "Meta", got["platform"])
	assert.Equal(t, "1000.00", got["budget"])
	assert.Equal(t, "Active", got["status"])
	assert.Equal(t, "2025-03-01", got["start_date"])
	assert.Equal(t, "2025-03-31", got["end_date"])
	assert.Equal(t, got["created_at"], got["updated_at"])
}

func TestCreateIgnoresReadOnlyFields(t *testing.T) {
	s := newTestServer(t)
	body := `{"id":99,"created_at":"1999-01-01T00:00:00Z","name":"X","platform":"TikTok","budget":"5","status":"Paused","start_date":"2025-01-01","end_date":"2024-01-01"}`

	rec := s.do(t, http.MethodPost, "/api/campaigns", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[campaignResponse](t, rec)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, domain.StatusPaused, got.Status)
	assert.Equal(t, "5.00", got.Budget)
	assert.NotEqual(t, 1999, got.CreatedAt.Year())
}

func TestCreateValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{name: "empty body", body: ``, fields: []string{"name", "platform", "budget", "start_date", "end_date"}},
		{name: "bad platform", body: strings.Replace(validBody, `"Meta"`, `"MySpace"`, 1), fields: []string{"platform"}},
		{name: "bad status", body: strings.Replace(validBody, `{`, `{"status":"Done",`, 1), fields: []string{"status"}},
		{name: "bad budget", body: strings.Replace(validBody, `1000.00`, `"lots"`, 1), fields: []string{"budget"}},
		{name: "bad dates", body: `{"name":"a","platform":"Meta","budget":1,"start_date":"01/03/2025","end_date":20250331}`, fields: []string{"start_date", "end_date"}},
		{name: "null name", body: strings.Replace(validBody, `"Spring"`, `null`, 1), fields: []string{"name"}},
		{name: "not an object", body: `[1,2]`, fields: []string{"non_field_errors"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/campaigns", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			got := decode[map[string][]string](t, rec)
			for _, f := range tt.fields {
				assert.Contains(t, got, f)
			}
			assert.Empty(t, s.repo.rows)
		})
	}
}

func TestListIsFlatAndNewestFirst(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"first", "second", "third"} {
		rec := s.do(t, http.MethodPost, "/api/campaigns", strings.Replace(validBody, "Spring", name, 1))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/campaigns/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["))

	got := decode[[]campaignResponse](t, rec)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, "first", got[2].Name)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
}

func TestListEmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/campaigns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListFilters(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/campaigns", validBody)
	s.do(t, http.MethodPost, "/api/campaigns", `{"name":"Summer","platform":"TikTok","budget":1,"status":"Paused","start_date":"2025-06-01","end_date":"2025-06-30"}`)

	rec := s.do(t, http.MethodGet, "/api/campaigns?status=Paused", "")
	got := decode[[]campaignResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Summer", got[0].Name)

	rec = s.do(t, http.MethodGet, "/api/campaigns?search=spr", "")
	got = decode[[]campaignResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Spring", got[0].Name)

	rec = s.do(t, http.MethodGet, "/api/campaigns?platform=Orkut", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrieveUpdateDelete(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/campaigns", validBody).Code)

	rec := s.do(t, http.MethodGet, "/api/campaigns/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[campaignResponse](t, rec)

	rec = s.do(t, http.MethodPatch, "/api/campaigns/1/", `{"status":"Completed","budget":"12.5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[campaignResponse](t, rec)
	assert.Equal(t, domain.StatusCompleted, patched.Status)
	assert.Equal(t, "12.50", patched.Budget)
	assert.Equal(t, "Spring", patched.Name)
	assert.Equal(t, before.CreatedAt, patched.CreatedAt)
	assert.True(t, patched.UpdatedAt.After(before.UpdatedAt))

	rec = s.do(t, http.MethodPut, "/api/campaigns/1", `{"name":"Only name"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string][]string](t, rec), "platform")

	rec = s.do(t, http.MethodPut, "/api/campaigns/1", strings.Replace(validBody, "Spring", "Replaced", 1))
	require.Equal(t, http.StatusOK, rec.Code)
	replaced := decode[campaignResponse](t, rec)
	assert.Equal(t, "Replaced", replaced.Name)
	assert.Equal(t, domain.StatusCompleted, replaced.Status)

	rec = s.do(t, http.MethodDelete, "/api/campaigns/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/campaigns/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/campaigns/1", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/campaigns/1", `{}`).Code)
}

func TestUnknownIDs(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/campaigns/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/campaigns/99999999999999999999", "").Code)
}

func TestStatsEmpty(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/campaigns/stats/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status_counts":{},"platform_budgets":{},"total_budget":0,"total_campaigns":0}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	bodies := []string{
		`{"name":"A","platform":"Meta","budget":100,"status":"Active","start_date":"2025-01-01","end_date":"2025-01-02"}`,
		`{"name":"B","platform":"Google Ads","budget":200,"status":"Active","start_date":"2025-01-01","end_date":"2025-01-02"}`,
		`{"name":"C","platform":"Meta","budget":50,"status":"Paused","start_date":"2025-01-01","end_date":"2025-01-02"}`,
	}
	for _, b := range bodies {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/campaigns", b).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/campaigns/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status_counts": {"Active": 2, "Paused": 1},
		"platform_budgets": {"Meta": 150, "Google Ads": 200},
		"total_budget": 350,
		"total_campaigns": 3
	}`, rec.Body.String())
}

func TestConvertBudget(t *testing.T) {
	s := newTestServer(t)
	body := strings.Replace(validBody, "1000.00", "100.00", 1)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/campaigns", body).Code)
	s.rates.EXPECT().Rates(mock.Anything).Return(map[string]float64{"EUR": 0.85, "GBP": 0.75}, nil)

	rec := s.do(t, http.MethodGet, "/api/campaigns/1/convert_budget/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"campaign_id": 1,
		"campaign_name": "Spring",
		"original_budget": 100,
		"currency": "USD",
		"conversions": {"USD": 100, "EUR": 85, "GBP": 75, "INR": 8300},
		"exchange_rates": {"EUR": 0.85, "GBP": 0.75, "INR": 83}
	}`, rec.Body.String())
}

func TestConvertBudgetUpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/campaigns", validBody).Code)
	before := s.repo.rows[1]

	s.rates.EXPECT().Rates(mock.Anything).
		Return(nil, &domain.RateError{Kind: domain.RateErrorTimeout, Err: errors.New("context deadline exceeded")})

	rec := s.do(t, http.MethodGet, "/api/campaigns/1/convert_budget", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[map[string]string](t, rec)
	assert.Equal(t, "Failed to fetch exchange rates: context deadline exceeded", got["error"])
	assert.Equal(t, "timeout", got["reason"])
	assert.Equal(t, before, s.repo.rows[1])
}

func TestConvertBudgetNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/campaigns/7/convert_budget", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware(t *testing.T) {
	s := newTestServer(t)

	t.Run("request id is generated", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/campaigns", "")
		_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("request id is propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("unknown host is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
		req.Host = "evil.test"
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/campaigns", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("cors rejects unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
		req.Header.Set("Origin", "http://attacker.test")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := configs.HTTP{AllowedHosts: []string{"*"}}
	svc := usecase.NewCampaignUseCase(newMemRepo(), mocks.NewMockRateProvider(t), logger)

	ok := NewHandler(svc, pingFunc(func(context.Context) error { return nil }), cfg, logger).Router()
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHandler(svc, pingFunc(func(context.Context) error { return errors.New("refused") }), cfg, logger).Router()
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHostAllowed(t *testing.T) {
	tests := []struct {
		host    string
		allowed []string
		want    bool
	}{
		{host: "localhost:8080", allowed: []string{"localhost"}, want: true},
		{host: "api.onrender.com", allowed: []string{".onrender.com"}, want: true},
		{host: "a.b.onrender.com:443", allowed: []string{".onrender.com"}, want: true},
		{host: "onrender.com", allowed: []string{"*.onrender.com"}, want: true},
		{host: "evilonrender.com", allowed: []string{".onrender.com"}, want: false},
		{host: "onrender.com.attacker.test", allowed: []string{".onrender.com"}, want: false},
		{host: "anything", allowed: []string{"*"}, want: true},
		{host: "LOCALHOST", allowed: []string{"localhost"}, want: true},
		{host: "localhost.", allowed: []string{"localhost"}, want: true},
		{host: "other", allowed: []string{"localhost", "127.0.0.1"}, want: false},
		{host: "127.0.0.1:8000", allowed: []string{"localhost", "127.0.0.1"}, want: true},
		{host: "127.0.0.10", allowed: []string{"127.0.0.1"}, want: false},
		{host: "[::1]", allowed: []string{"::1"}, want: true},
		{host: "[::1]:8000", allowed: []string{"::1"}, want: true},
		{host: "[::2]", allowed: []string{"[::1]"}, want: false},
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			allowedHosts(tt.allowed)(ok).ServeHTTP(rec, req)

			if tt.want {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"detail":"Invalid HTTP_HOST header."}`, rec.Body.String())
		})
	}
}
