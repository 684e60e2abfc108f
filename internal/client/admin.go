package client

import (
	"context"
	"net/http"

	"partnerdash/internal/admin"
	"partnerdash/internal/admin/types"
)

func (c *Client) adminAction(ctx context.Context, req admin.ActionRequest, out any) error {
	return c.do(ctx, http.MethodPost, "/functions/admin-users", req, out)
}

func (c *Client) ListUsers(ctx context.Context) ([]types.UserRow, error) {
	var rows []types.UserRow
	if err := c.adminAction(ctx, admin.ActionRequest{Action: "list"}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.adminAction(ctx, admin.ActionRequest{Action: "delete", UserID: userID}, nil)
}

func (c *Client) UpdateRole(ctx context.Context, userID, role string) error {
	return c.adminAction(ctx, admin.ActionRequest{Action: "update", UserID: userID, Role: role}, nil)
}

func (c *Client) ListInvitations(ctx context.Context) ([]types.InvitationRow, error) {
	var rows []types.InvitationRow
	if err := c.adminAction(ctx, admin.ActionRequest{Action: "listInvitations"}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) DeleteInvitation(ctx context.Context, invitationID string) error {
	return c.adminAction(ctx, admin.ActionRequest{Action: "deleteInvitation", ID: invitationID}, nil)
}

func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var stats types.Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
