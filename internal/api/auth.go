package api

import (
	"context"

	"github.com/parishlib/libris/internal/errors"
)

// Login authenticates with email and password and returns the session. The
// caller owns persisting the bearer token and installing it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.doJSON(ctx, "POST", "/login", body, &session); err != nil {
		return nil, err
	}
	if !session.Status {
		apiErr := &Error{StatusCode: 200, Message: session.Message}
		return nil, errors.Newf("login failed: %w", apiErr).
			Category(errors.CategoryAuth).
			Component("api").
			Build()
	}
	return &session, nil
}

// Logout invalidates the current session server-side. Local token disposal is
// the caller's responsibility and happens regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, "POST", "/logout", nil, nil)
}

// Refresh exchanges the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var session Session
	if err := c.doJSON(ctx, "POST", "/refresh", nil, &session); err != nil {
		return nil, err
	}
	if !session.Status || session.Token == "" {
		apiErr := &Error{StatusCode: 200, Message: session.Message}
		return nil, errors.Newf("session refresh failed: %w", apiErr).
			Category(errors.CategoryAuth).
			Component("api").
			Build()
	}
	return &session, nil
}
