package client

import (
	"context"
	"net/http"

	invitation "partnerdash/internal/invitation/handler"
)

// Invite creates an invitation. When email delivery did not happen the
// response carries a warning and the raw token to share by hand.
func (c *Client) Invite(ctx context.Context, email, role string) (*invitation.InviteResponse, error) {
	var resp invitation.InviteResponse
	req := invitation.InvitationRequest{Action: "invite", Email: email, Role: role}
	if err := c.do(ctx, http.MethodPost, "/functions/invite", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AcceptInvitation redeems token for the signed-in user.
func (c *Client) AcceptInvitation(ctx context.Context, token string) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}
	req := invitation.InvitationRequest{Action: "accept", Token: token, UserID: userID}
	return c.do(ctx, http.MethodPost, "/functions/invite", req, nil)
}

// LookupInvitation returns nil when the token is not redeemable.
func (c *Client) LookupInvitation(ctx context.Context, token string) (*invitation.LookupResponse, error) {
	var resp invitation.LookupResponse
	if err := c.do(ctx, http.MethodPost, "/rpc/invitation", invitation.LookupRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, nil
	}
	return &resp, nil
}
