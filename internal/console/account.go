package console

import (
	"context"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/querycache"
)

// Login authenticates and installs the returned bearer token on the API
// client, so subsequent calls in this process are authenticated. The token is
// also written into settings for persistence by the caller.
func (c *Console) Login(ctx context.Context, email, password string) (*api.Session, error) {
	session, err := c.api.Login(ctx, email, password)
	if err != nil {
		for _, msg := range api.UserMessages(err) {
			c.notifier.Error(msg)
		}
		return nil, err
	}

	token := session.Token
	c.api.SetTokenProvider(func() string { return token })
	if settings := conf.GetSettings(); settings != nil {
		settings.Server.Token = token
	}

	logger.Info("logged in", "user_id", session.User.ID, "role", string(session.User.Role))
	c.notifier.Success("Logged in successfully")
	return session, nil
}

// Logout invalidates the session server-side and drops the local token
// either way: a failed logout call must not leave the client authenticated.
func (c *Console) Logout(ctx context.Context) error {
	err := c.api.Logout(ctx)

	c.api.SetTokenProvider(nil)
	if settings := conf.GetSettings(); settings != nil {
		settings.Server.Token = ""
	}

	if err != nil {
		logger.Warn("server-side logout failed, local session dropped", "error", err)
		return err
	}
	c.notifier.Success("Logged out successfully")
	return nil
}

// UpdateProfile updates the authenticated user's profile.
func (c *Console) UpdateProfile(ctx context.Context, input api.ProfileInput) (*api.User, error) {
	m := &querycache.Mutation[api.ProfileInput, *api.User]{
		Name:  "update-profile",
		Store: c.store,
		Fn: func(ctx context.Context, in api.ProfileInput) (*api.User, error) {
			return c.api.UpdateProfile(ctx, in)
		},
		Invalidates: func(api.ProfileInput) []querycache.Key {
			// The authenticated user may also appear as a member.
			return []querycache.Key{MembersKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.ProfileInput, *api.User) string {
			return "Profile updated successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// UpdatePassword changes the authenticated user's password.
func (c *Console) UpdatePassword(ctx context.Context, input api.PasswordInput) error {
	m := &querycache.Mutation[api.PasswordInput, string]{
		Name:  "update-password",
		Store: c.store,
		Fn: func(ctx context.Context, in api.PasswordInput) (string, error) {
			return c.api.UpdatePassword(ctx, in)
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(_ api.PasswordInput, message string) string {
			if message != "" {
				return message
			}
			return "Password updated successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, input, nil)
	return err
}
