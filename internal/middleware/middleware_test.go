package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewRedisCache_PerPathEntries(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
	calls := 0
	e := echo.New()
	e.GET("/api/qr/:id", func(c echo.Context) error {
		calls++
		return c.Blob(http.StatusOK, "image/png", []byte("png-"+c.Param("id")))
	}, NewRedisCache(cfg, rdb, nil))

	first := serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/a", nil))
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/a", nil))
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, "png-a", second.Body.String())
	require.Equal(t, "image/png", second.Header().Get(echo.HeaderContentType))

	other := serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/b", nil))
	require.Equal(t, "MISS", other.Header().Get("X-Cache"))
	require.Equal(t, "png-b", other.Body.String())
	require.Equal(t, 2, calls)
}

func TestNewRedisCache_SkipsErrors(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "cache"}
	e := echo.New()
	e.GET("/api/qr/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nope"})
	}, NewRedisCache(cfg, rdb, nil))

	serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/x", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/x", nil))
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestNewRedisCache_RevalidatesHits(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Hour, Prefix: "cache"}
	issued := map[string]bool{"a": true}
	e := echo.New()
	e.GET("/api/qr/:id", func(c echo.Context) error {
		if !issued[c.Param("id")] {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gone"})
		}
		return c.Blob(http.StatusOK, "image/png", []byte("png"))
	}, NewRedisCache(cfg, rdb, func(c echo.Context) bool { return issued[c.Param("id")] }))

	require.Equal(t, "MISS", serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/a", nil)).Header().Get("X-Cache"))
	require.Equal(t, "HIT", serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/a", nil)).Header().Get("X-Cache"))

	delete(issued, "a")
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/qr/a", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	keys, err := rdb.Keys(context.Background(), "cache:*").Result()
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestNewRedisCache_NilClientPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil, nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Empty(t, rec.Header().Get("X-Cache"))
}

func TestNewTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/api/register", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/register", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/register", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "3600", rec.Header().Get("Retry-After"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	other := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	other.RemoteAddr = "10.0.0.9:1234"
	require.Equal(t, http.StatusOK, serve(e, other).Code)
}

func TestNewTokenBucket_NoRefillWaitsForExpiry(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, TTL: 90 * time.Second, Prefix: "rl"}
	e := echo.New()
	e.POST("/api/purchases", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	require.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/api/purchases", nil)).Code)
	rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/purchases", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "90", rec.Header().Get("Retry-After"))
}

type fakeGate struct{ key string }

func (g fakeGate) Open() bool { return g.key == "" }
func (g fakeGate) Authorize(s string) error {
	if g.Open() || s == g.key {
		return nil
	}
	return errors.New("no")
}

func TestRequireAdmin(t *testing.T) {
	const secret = "jwt-secret"
	newEcho := func(gate Gate) *echo.Echo {
		e := echo.New()
		e.Use(AdminSession(secret))
		e.GET("/admin", func(c echo.Context) error { return c.String(http.StatusOK, subject(c)) }, RequireAdmin(gate))
		return e
	}
	req := func(h, v string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if h != "" {
			r.Header.Set(h, v)
		}
		return r
	}

	open := newEcho(fakeGate{})
	require.Equal(t, http.StatusOK, serve(open, req("", "")).Code)

	gated := newEcho(fakeGate{key: "k"})
	require.Equal(t, http.StatusUnauthorized, serve(gated, req("", "")).Code)
	require.Equal(t, http.StatusUnauthorized, serve(gated, req(HeaderAdminKey, "wrong")).Code)
	require.Equal(t, http.StatusOK, serve(gated, req(HeaderAdminKey, "k")).Code)

	tok, err := utils.NewAccessToken(secret, "admin", RoleAdmin, time.Minute)
	require.NoError(t, err)
	rec := serve(gated, req(echo.HeaderAuthorization, "Bearer "+tok.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", rec.Body.String())

	other, err := utils.NewAccessToken(secret, "x", "CUSTOMER", time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, serve(gated, req(echo.HeaderAuthorization, "Bearer "+other.Token)).Code)
	require.Equal(t, http.StatusUnauthorized, serve(gated, req(echo.HeaderAuthorization, "Basic abc")).Code)
}

func TestAdminSession_ForeignHeadersPassThrough(t *testing.T) {
	newEcho := func(secret string) *echo.Echo {
		e := echo.New()
		e.Use(AdminSession(secret))
		e.POST("/api/register", func(c echo.Context) error {
			return c.String(http.StatusOK, subject(c))
		})
		return e
	}
	req := func(auth string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/register", nil)
		r.Header.Set(echo.HeaderAuthorization, auth)
		return r
	}

	noSecret := newEcho("")
	for _, auth := range []string{"Basic Zm9vOmJhcg==", "Bearer whatever"} {
		rec := serve(noSecret, req(auth))
		require.Equal(t, http.StatusOK, rec.Code, auth)
		require.Equal(t, "guest", rec.Body.String())
	}

	withSecret := newEcho("jwt-secret")
	rec := serve(withSecret, req("Basic Zm9vOmJhcg=="))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "guest", rec.Body.String())
	require.Equal(t, http.StatusUnauthorized, serve(withSecret, req("Bearer not-a-jwt")).Code)
}
