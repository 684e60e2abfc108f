package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const maxReportBytes = 10 << 20

var errNotConfigured = errors.New("partner webhook not configured")

// HTTPFetcher GETs the partner report from the reporting webhook.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
	policy     *bluemonday.Policy
}

type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.httpClient = client
	}
}

func NewHTTPFetcher(url string, timeout time.Duration, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads and decodes the report. The body may be a bare array or an
// object carrying the rows under "partners" or "data".
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Partner, error) {
	if f.url == "" {
		return nil, errNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch report: upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	partners, err := decodeReport(body)
	if err != nil {
		return nil, err
	}
	for i := range partners {
		f.sanitize(&partners[i])
	}
	return partners, nil
}

func decodeReport(body []byte) ([]Partner, error) {
	var rows []Partner
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped struct {
		Partners []Partner `json:"partners"`
		Data     []Partner `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if len(wrapped.Partners) > 0 {
		return wrapped.Partners, nil
	}
	return wrapped.Data, nil
}

// sanitize strips markup from free-text fields; the report is rendered by a browser.
func (f *HTTPFetcher) sanitize(p *Partner) {
	p.Name = f.policy.Sanitize(p.Name)
	p.Category = f.policy.Sanitize(p.Category)
	p.CreatedAt = f.policy.Sanitize(p.CreatedAt)
	for _, field := range []*string{p.LastSuccessAt, p.LastQuoteAt} {
		if field != nil {
			*field = f.policy.Sanitize(*field)
		}
	}
}
