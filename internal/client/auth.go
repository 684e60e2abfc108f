package client

import (
	"context"
	"net/http"

	identity "partnerdash/internal/identity/handler"
	"partnerdash/internal/session"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*identity.UserResponse, error) {
	var resp identity.SignUpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SignIn exchanges credentials for a session and notifies subscribers.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	var resp identity.SignInResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	s := &session.Session{
		ID:          resp.SessionID,
		AccessToken: resp.AccessToken,
		User:        session.User{ID: resp.User.ID, Email: resp.User.Email},
		ExpiresAt:   resp.ExpiresAt,
	}
	c.setSession(s)
	return s, nil
}

// SignOut ends the server session. The local session is dropped even when the
// server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Current() == nil {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
	c.setSession(nil)
	return err
}

// Restore adopts a previously saved session after the server confirms it is
// still live. A rejected session leaves the client signed out.
func (c *Client) Restore(ctx context.Context, saved *session.Session) (*session.Session, error) {
	if saved == nil || saved.AccessToken == "" {
		c.setSession(nil)
		return nil, nil
	}

	c.mu.Lock()
	c.session = saved
	c.mu.Unlock()

	var resp identity.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &resp); err != nil {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		if StatusOf(err) == http.StatusUnauthorized {
			c.setSession(nil)
			return nil, nil
		}
		return nil, err
	}

	s := &session.Session{
		ID:          resp.SessionID,
		AccessToken: saved.AccessToken,
		User:        session.User{ID: resp.User.ID, Email: resp.User.Email},
		ExpiresAt:   resp.ExpiresAt,
	}
	c.setSession(s)
	return s, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPost, "/auth/password", body, nil)
}
