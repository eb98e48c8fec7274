package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventaris/internal/domain"
	"inventaris/internal/logging"
	"inventaris/internal/session"
)

const maxErrorBody = 1 << 20

// Client REST-клиент бэкенда с bearer-авторизацией и однократным обновлением токена
type Client struct {
	baseURL  string
	http     *http.Client
	store    session.Store
	log      *slog.Logger
	onLogout func()

	mu   sync.Mutex
	sess session.Session

	refreshMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLogoutHook вызывается после принудительного выхода (обновление токена не удалось)
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// New создаёт клиент и загружает сохранённую сессию
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
		log:     logging.New("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	s, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	c.sess = s
	return c, nil
}

// Session текущая сессия (копия)
func (c *Client) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Client) setSession(s session.Session) error {
	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
	if err := c.store.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

type request struct {
	method string
	path   string
	body   any
	out    any
	public bool // token endpoints: no bearer, no refresh
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, request{method: http.MethodGet, path: path, out: out})
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, request{method: http.MethodPost, path: path, body: body, out: out})
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, request{method: http.MethodPut, path: path, body: body, out: out})
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: path})
}

func (c *Client) call(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
	}
	reqID := uuid.NewString()

	token := ""
	if !r.public {
		token = c.Session().AccessToken
	}
	resp, err := c.send(ctx, r, payload, token, reqID)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !r.public {
		drain(resp)
		if err := c.refresh(ctx, token); err != nil {
			return err
		}
		// exactly one retry; a second 401 is reported as is
		resp, err = c.send(ctx, r, payload, c.Session().AccessToken, reqID)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	return decode(resp, r.out)
}

func (c *Client) send(ctx context.Context, r request, payload []byte, token, reqID string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("request failed", "method", r.method, "path", r.path, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	c.log.Debug("request", "method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", reqID, "duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

// refresh обменивает refresh-токен один раз; stale: access-токен неудавшегося запроса
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	cur := c.Session()
	if cur.AccessToken != "" && cur.AccessToken != stale {
		// another request already refreshed
		return nil
	}
	if cur.RefreshToken == "" {
		return c.expire(fmt.Errorf("no refresh token"))
	}

	var pair domain.TokenPair
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/token/refresh/",
		body:   domain.RefreshRequest{Refresh: cur.RefreshToken},
		out:    &pair,
		public: true,
	})
	if err == nil && pair.Access == "" {
		err = fmt.Errorf("empty access token in refresh response")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// caller gave up; the session is still valid
		return err
	}
	if err != nil {
		return c.expire(err)
	}

	next := cur
	next.AccessToken = pair.Access
	if pair.Refresh != "" {
		next.RefreshToken = pair.Refresh
	}
	c.log.Info("access token refreshed")
	return c.setSession(next)
}

// expire сбрасывает токены и вызывает хук выхода
func (c *Client) expire(cause error) error {
	c.log.Warn("session expired, logging out", "cause", cause)
	if err := c.setSession(c.Session().WithoutTokens()); err != nil {
		c.log.Error("clear session", "err", err)
	}
	if c.onLogout != nil {
		c.onLogout()
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, body)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		drain(resp)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
