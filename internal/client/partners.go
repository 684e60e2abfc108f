package client

import (
	"context"
	"net/http"

	"partnerdash/internal/dashboard"
)

// Partners returns the partner report; refresh forces the server to refetch it.
func (c *Client) Partners(ctx context.Context, refresh bool) (*dashboard.PartnersResponse, error) {
	method, path := http.MethodGet, "/api/partners"
	if refresh {
		method, path = http.MethodPost, "/api/partners/refresh"
	}
	var resp dashboard.PartnersResponse
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
