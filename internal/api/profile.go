package api

import "context"

// UpdateProfile updates the authenticated user's profile. The backend signals
// rejection through the envelope status even on HTTP 200.
func (c *Client) UpdateProfile(ctx context.Context, input ProfileInput) (*User, error) {
	env, err := doEnvelope[User](ctx, c, "POST", "/user/profile", input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdatePassword changes the authenticated user's password.
func (c *Client) UpdatePassword(ctx context.Context, input PasswordInput) (string, error) {
	env, err := doEnvelope[struct{}](ctx, c, "POST", "/user/password", input)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
