package client

import (
	"context"
	"net/http"
	"net/url"

	"partnerdash/internal/authstate"
	mfa "partnerdash/internal/mfa/handler"
	"partnerdash/internal/session"
)

// Role returns the caller's role, or "" while the account awaits approval.
func (c *Client) Role(ctx context.Context) (string, error) {
	var resp authstate.RoleResponse
	if err := c.do(ctx, http.MethodGet, "/auth/role", nil, &resp); err != nil {
		return "", err
	}
	if resp.Role == nil {
		return "", nil
	}
	return *resp.Role, nil
}

// MFAInfo returns nil when the caller has no MFA record.
func (c *Client) MFAInfo(ctx context.Context) (*session.MFAInfo, error) {
	var resp mfa.InfoResponse
	if err := c.do(ctx, http.MethodGet, "/rpc/mfa-info", nil, &resp); err != nil {
		return nil, err
	}
	if resp.IsVerified == nil {
		return nil, nil
	}
	return &session.MFAInfo{Type: resp.MFAType, IsVerified: *resp.IsVerified}, nil
}

// State asks the server for the guard decision on path.
func (c *Client) State(ctx context.Context, path string) (*authstate.StateResponse, error) {
	var resp authstate.StateResponse
	if err := c.do(ctx, http.MethodGet, "/auth/state?path="+url.QueryEscape(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
