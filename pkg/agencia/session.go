package agencia

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eshaffer321/agencia-go/internal/transport"
	"github.com/pkg/errors"
)

// GetUserSession returns the current visitor, or nil when there is no
// session. It never redirects: 401, 403, other error statuses and bodies
// that do not decode as a user all yield (nil, nil). Only a failed
// exchange returns an error.
func (c *Client) GetUserSession(ctx context.Context) (*User, error) {
	resp, err := c.transport.Do(ctx, &transport.Request{Method: http.MethodGet, URL: SessionPath})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("Session check failed", "status", resp.StatusCode)
		return nil, nil
	}

	var user *User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		c.logger.Debug("Session body is not a user", "error", err)
		return nil, nil
	}
	return user, nil
}

// RequireAuth returns the current visitor and navigates to the login page
// when there is none, unless already there.
func (c *Client) RequireAuth(ctx context.Context) (*User, error) {
	user, err := c.GetUserSession(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil && !c.onLoginPage() {
		c.redirectToLogin()
	}
	return user, nil
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Login authenticates with email and password. The server answers with a
// session cookie that the client keeps for later calls, and saves to the
// session file when one is configured.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	v, err := c.RequestJSON(ctx, LoginAPIPath, &RequestOptions{
		Method:                http.MethodPost,
		Body:                  loginRequest{Email: email, Senha: password},
		SuppressLoginRedirect: true,
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, errors.Wrap(ErrLoginFailed, email)
		}
		return nil, err
	}

	var user User
	if err := Decode(v, &user); err != nil {
		return nil, errors.Wrap(err, "unexpected login response")
	}

	c.logger.Info("Login successful", "email", email, "role", user.Role)

	if err := c.SaveSession(); err != nil {
		c.logger.Warn("Failed to save session", "error", err)
	}
	return &user, nil
}

// Logout ends the session and navigates to the login page, whether or not
// the sign-out call succeeded.
func (c *Client) Logout(ctx context.Context) error {
	defer c.redirectToLogin()

	_, err := c.RequestJSON(ctx, LogoutPath, &RequestOptions{Method: http.MethodPost})
	if clearErr := c.ClearSession(); clearErr != nil {
		c.logger.Warn("Failed to clear session", "error", clearErr)
	}
	return err
}
