package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventaris/internal/domain"
	"inventaris/internal/logging"
	"inventaris/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.Handler, s session.Session, opts ...Option) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore(s)
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	c, err := New(srv.URL+"/api", store, opts...)
	require.NoError(t, err)
	return c, store
}

func TestBearerAndRequestID(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kategori/3/", r.URL.Path)
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, domain.Category{ID: 3, Name: "Minuman"})
	})
	c, _ := newClient(t, h, session.Session{AccessToken: "A1", RefreshToken: "R1"})

	cat, err := c.Categories().Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Minuman", cat.Name)
}

func TestRefreshAndRetry(t *testing.T) {
	var calls, refreshes atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh/":
			refreshes.Add(1)
			assert.Empty(t, r.Header.Get("Authorization"))
			var body domain.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "R1", body.Refresh)
			writeJSON(w, http.StatusOK, domain.TokenPair{Access: "A2"})
		case "/api/produk/":
			calls.Add(1)
			if r.Header.Get("Authorization") != "Bearer A2" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
				return
			}
			writeJSON(w, http.StatusOK, domain.Page[domain.Product]{Count: 1, Results: []domain.Product{{ID: 1}}})
		default:
			http.NotFound(w, r)
		}
	})
	c, store := newClient(t, h, session.Session{AccessToken: "A1", RefreshToken: "R1", Username: "admin"})

	page, err := c.Products().List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, refreshes.Load())

	saved, _ := store.Load()
	assert.Equal(t, "A2", saved.AccessToken)
	assert.Equal(t, "R1", saved.RefreshToken, "refresh token kept when not rotated")
}

func TestRefreshFailureLogsOut(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/refresh/" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	var loggedOut atomic.Bool
	c, store := newClient(t, h,
		session.Session{AccessToken: "A1", RefreshToken: "R1", Username: "admin"},
		WithLogoutHook(func() { loggedOut.Store(true) }))

	_, err := c.Transactions().List(context.Background(), 1)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, loggedOut.Load())
	assert.EqualValues(t, 1, calls.Load(), "no retry after failed refresh")

	saved, _ := store.Load()
	assert.False(t, saved.Authenticated())
	assert.Empty(t, saved.RefreshToken)
	assert.Equal(t, "admin", saved.Username)
}

func TestCancelDuringRefreshKeepsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/refresh/" {
			cancel()
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	var loggedOut atomic.Bool
	c, store := newClient(t, h,
		session.Session{AccessToken: "A1", RefreshToken: "R1", Username: "admin"},
		WithLogoutHook(func() { loggedOut.Store(true) }))

	_, err := c.Profile(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.False(t, loggedOut.Load())

	saved, _ := store.Load()
	assert.Equal(t, "A1", saved.AccessToken)
	assert.Equal(t, "R1", saved.RefreshToken)
}

func TestNoRefreshTokenLogsOut(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	var loggedOut bool
	c, _ := newClient(t, h, session.Session{AccessToken: "A1"}, WithLogoutHook(func() { loggedOut = true }))

	_, err := c.Profile(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, loggedOut)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, session.NewMemoryStore(session.Session{}), WithLogger(logging.Discard()))
	require.NoError(t, err)
	_, err = c.Suppliers().List(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestAPIErrorDetail(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transaksi/":
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Stok Gula tidak cukup"})
		default:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte("in use"))
		}
	})
	c, _ := newClient(t, h, session.Session{AccessToken: "A1"})

	_, err := c.Transactions().Create(context.Background(), domain.TransactionRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Stok Gula tidak cukup", apiErr.Detail)

	err = c.Customers().Delete(context.Background(), 1)
	assert.True(t, IsStatus(err, http.StatusConflict))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "in use", apiErr.Detail)
}

func TestAllFollowsNext(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		out := domain.Page[domain.Customer]{Count: 5}
		for i := 0; i < 2 && (page-1)*2+i < 5; i++ {
			out.Results = append(out.Results, domain.Customer{ID: int64((page-1)*2 + i + 1)})
		}
		if page < 3 {
			next := "http://x/api/customer/?page=" + strconv.Itoa(page+1)
			out.Next = &next
		}
		writeJSON(w, http.StatusOK, out)
	})
	c, _ := newClient(t, h, session.Session{AccessToken: "A1"})

	all, err := c.Customers().All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[4].ID)
}

func TestSearchQuery(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gula", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "next": nil, "previous": nil})
	})
	c, _ := newClient(t, h, session.Session{AccessToken: "A1"})

	page, err := c.Products().Search(context.Background(), "gula", 2)
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
}

func TestLogin(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cred domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		if cred.Password != "admin123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, domain.TokenPair{Access: "A", Refresh: "R"})
	})

	t.Run("remember", func(t *testing.T) {
		c, store := newClient(t, h, session.Session{})
		require.NoError(t, c.Login(context.Background(), "admin", "admin123", true))
		saved, _ := store.Load()
		assert.Equal(t, session.Session{AccessToken: "A", RefreshToken: "R", Username: "admin"}, saved)

		require.NoError(t, c.Logout())
		saved, _ = store.Load()
		assert.Equal(t, session.Session{Username: "admin"}, saved)
	})

	t.Run("forget", func(t *testing.T) {
		c, store := newClient(t, h, session.Session{Username: "someone"})
		require.NoError(t, c.Login(context.Background(), "admin", "admin123", false))
		saved, _ := store.Load()
		assert.Empty(t, saved.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		var loggedOut bool
		c, _ := newClient(t, h, session.Session{}, WithLogoutHook(func() { loggedOut = true }))
		err := c.Login(context.Background(), "admin", "nope", true)
		assert.True(t, IsStatus(err, http.StatusUnauthorized))
		assert.False(t, loggedOut, "login 401 must not trigger refresh")
	})
}
