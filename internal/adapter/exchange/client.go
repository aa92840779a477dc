package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialbooster/internal/core/domain"
)

// maxBody caps how much of the upstream response is read.
const maxBody = 1 << 20

// Client fetches exchange rates from a third-party HTTP API. It implements
// port.RateProvider.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for url. Every request is bounded by timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint the client queries.
func (c *Client) URL() string {
	return c.url
}

// Rates performs a single GET against the configured endpoint and returns
// its "rates" object. A body without "rates" yields a nil map. Failures,
// including null rates, are reported as *domain.RateError.
func (c *Client) Rates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.RateError{Kind: domain.RateErrorTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.RateError{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &domain.RateError{
			Kind: domain.RateErrorStatus,
			Err:  fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), c.url),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &domain.RateError{Kind: classify(err), Err: fmt.Errorf("read rates: %w", err)}
	}
	rates, err := parseRates(raw)
	if err != nil {
		return nil, &domain.RateError{Kind: domain.RateErrorParse, Err: err}
	}
	return rates, nil
}

// parseRates extracts the "rates" object from body. Only an absent key is
// tolerated; a null body, null rates or a null rate are errors.
func parseRates(body []byte) (map[string]float64, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if top == nil {
		return nil, errors.New("decode rates: response body is null")
	}
	field, ok := top["rates"]
	if !ok {
		return nil, nil
	}

	var values map[string]*float64
	if err := json.Unmarshal(field, &values); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if values == nil {
		return nil, errors.New("decode rates: rates is null")
	}
	rates := make(map[string]float64, len(values))
	for cur, v := range values {
		if v == nil {
			return nil, fmt.Errorf("decode rates: rate for %s is null", cur)
		}
		rates[cur] = *v
	}
	return rates, nil
}

func classify(err error) domain.RateErrorKind {
	if isTimeout(err) {
		return domain.RateErrorTimeout
	}
	return domain.RateErrorTransport
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
