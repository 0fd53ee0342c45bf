package sithub

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Login authenticates with local credentials and stores the session cookie
func (c *Client) Login(ctx context.Context, email, password string) (*Resource[User], error) {
	var resp SingleResponse[User]
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		loginPayload{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	c.mu.Lock()
	user := resp.Data.Attributes
	c.currentUser = &user
	c.mu.Unlock()

	c.logger.Info("Logged in",
		zap.String("user_id", resp.Data.ID),
		zap.String("display", user.DisplayName))

	return &resp.Data, nil
}

// Logout ends the session. Network errors are logged and ignored.
func (c *Client) Logout(ctx context.Context) {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil); err != nil {
		c.logger.Debug("Logout request failed", zap.Error(err))
	}

	c.mu.Lock()
	c.currentUser = nil
	c.mu.Unlock()
}

// Me returns the authenticated user. The result is cached until Logout.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.mu.Lock()
	cached := c.currentUser
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	var resp SingleResponse[User]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/me", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	user := resp.Data.Attributes
	c.mu.Lock()
	c.currentUser = &user
	c.mu.Unlock()

	c.logger.Info("Current user identified",
		zap.String("id", resp.Data.ID),
		zap.String("display", user.DisplayName))

	return &user, nil
}
