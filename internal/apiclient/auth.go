package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"inventaris/internal/domain"
	"inventaris/internal/session"
)

// Login получает пару токенов и сохраняет её; имя пользователя запоминается при remember
func (c *Client) Login(ctx context.Context, username, password string, remember bool) error {
	var pair domain.TokenPair
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/token/",
		body:   domain.Credentials{Username: username, Password: password},
		out:    &pair,
		public: true,
	})
	if err != nil {
		return err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return fmt.Errorf("login: incomplete token pair")
	}

	next := session.Session{AccessToken: pair.Access, RefreshToken: pair.Refresh}
	if remember {
		next.Username = username
	} else if prev := c.Session().Username; prev == username {
		next.Username = prev
	}
	c.log.Info("logged in", "username", username)
	return c.setSession(next)
}

// Logout сбрасывает токены; запомненное имя пользователя остаётся
func (c *Client) Logout() error {
	return c.setSession(c.Session().WithoutTokens())
}

func (c *Client) Register(ctx context.Context, r domain.Registration) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/auth/register/", body: r, public: true})
}

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	err := c.get(ctx, "/auth/profile/", &p)
	return p, err
}
