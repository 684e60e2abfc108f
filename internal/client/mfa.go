package client

import (
	"context"
	"errors"
	"net/http"

	mfa "partnerdash/internal/mfa/handler"
)

var errSignedOut = errors.New("not signed in")

func (c *Client) userID() (string, error) {
	s := c.Current()
	if s == nil {
		return "", errSignedOut
	}
	return s.User.ID, nil
}

// SendCode emails a fresh one-time code to the signed-in user.
func (c *Client) SendCode(ctx context.Context) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/functions/send-code", mfa.SendCodeRequest{UserID: userID}, nil)
}

// VerifyCode checks code against the signed-in user's factor. A rejected code
// is not an error: the result carries the reason.
func (c *Client) VerifyCode(ctx context.Context, code, mfaType string) (*mfa.VerifyCodeResponse, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	var resp mfa.VerifyCodeResponse
	req := mfa.VerifyCodeRequest{UserID: userID, Code: code, MFAType: mfaType}
	if err := c.do(ctx, http.MethodPost, "/functions/verify-code", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BeginTOTPSetup(ctx context.Context) (*mfa.TOTPSetupResponse, error) {
	var resp mfa.TOTPSetupResponse
	if err := c.do(ctx, http.MethodPost, "/mfa/setup/totp", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BeginEmailSetup(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/mfa/setup/email", nil, nil)
}

func (c *Client) ConfirmSetup(ctx context.Context, code string) (*mfa.VerifyCodeResponse, error) {
	var resp mfa.VerifyCodeResponse
	if err := c.do(ctx, http.MethodPost, "/mfa/setup/confirm", mfa.ConfirmSetupRequest{Code: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
