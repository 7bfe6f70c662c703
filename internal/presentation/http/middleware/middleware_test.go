package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/config"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTenants struct {
	tenants map[uuid.UUID]*entity.Tenant
}

func (s *stubTenants) Create(_ context.Context, t *entity.Tenant) error {
	s.tenants[t.ID] = t
	return nil
}

func (s *stubTenants) GetByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	return s.tenants[id], nil
}

func (s *stubTenants) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (s *stubTenants) Update(_ context.Context, t *entity.Tenant) error {
	s.tenants[t.ID] = t
	return nil
}

type memKeys struct {
	mu   sync.Mutex
	keys []*entity.IdempotencyKey
}

func (m *memKeys) GetByKey(_ context.Context, key string, tenantID, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.Key == key && k.TenantID == tenantID && k.UserID == userID && !k.IsExpired() {
			return k, nil
		}
	}
	return nil, nil
}

func (m *memKeys) Save(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, ikey)
	return nil
}

func (m *memKeys) DeleteExpired(context.Context) error { return nil }

func withIdentity(userID, tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

func serve(r *gin.Engine, method, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	userID, tenantID := uuid.New(), uuid.New()
	token, err := jwt.GenerateAccessToken(userID, tenantID, "sales@example.com", []string{"sales"}, nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware(jwt))
	r.GET("/me", func(c *gin.Context) {
		scoped, ok := infraRepo.GetTenantID(c.Request.Context())
		assert.True(t, ok)
		assert.Equal(t, tenantID, scoped)
		assert.Equal(t, tenantID, GetTenantID(c))
		assert.Equal(t, userID, c.MustGet("user_id"))
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.header == "" {
				w = serve(r, http.MethodGet, "/me")
			} else {
				w = serve(r, http.MethodGet, "/me", "Authorization", tt.header)
			}
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_roles", []string{c.GetHeader("X-Role")})
		c.Next()
	})
	r.GET("/admin", RequireRole("admin", "owner"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", "X-Role", "owner").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", "X-Role", "sales").Code)
}

func TestExtractTenantFromHost(t *testing.T) {
	slug, err := ExtractTenantFromHost("acme.quotes.example.com:8080")
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)

	_, err = ExtractTenantFromHost("localhost:8080")
	assert.Error(t, err)
}

func TestTenantMiddleware(t *testing.T) {
	acme := &entity.Tenant{ID: uuid.New(), Name: "Acme", Slug: "acme"}
	repo := &stubTenants{tenants: map[uuid.UUID]*entity.Tenant{acme.ID: acme}}

	newRouter := func(tenantID uuid.UUID) *gin.Engine {
		r := gin.New()
		r.Use(withIdentity(uuid.New(), tenantID), TenantMiddleware(repo))
		r.GET("/quotes", func(c *gin.Context) {
			tenant := c.MustGet("tenant").(*entity.Tenant)
			c.String(http.StatusOK, tenant.Slug)
		})
		return r
	}

	w := serve(newRouter(acme.ID), http.MethodGet, "http://acme.quotes.example.com/quotes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", w.Body.String())

	w = serve(newRouter(acme.ID), http.MethodGet, "http://globex.quotes.example.com/quotes")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newRouter(uuid.New()), http.MethodGet, "/quotes")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(newRouter(uuid.Nil), http.MethodGet, "/quotes")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotencyStoresOnlySuccess(t *testing.T) {
	keys := &memKeys{}
	userID, tenantID := uuid.New(), uuid.New()
	calls := 0
	fail := true

	r := gin.New()
	r.Use(withIdentity(userID, tenantID))
	r.POST("/quotes", Idempotency(IdempotencyConfig{Repo: keys, Log: zap.NewNop()}), func(c *gin.Context) {
		calls++
		if fail {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "call": calls})
	})

	w := serve(r, http.MethodPost, "/quotes", IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, keys.keys, "failures are not stored")

	fail = false
	w = serve(r, http.MethodPost, "/quotes", IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusCreated, w.Code)
	first := w.Body.String()

	w = serve(r, http.MethodPost, "/quotes", IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(IdempotencyReplayedHeader))
	assert.JSONEq(t, first, w.Body.String())
	assert.Equal(t, 2, calls)

	w = serve(r, http.MethodPost, "/quotes")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, 3, calls)
	require.Len(t, keys.keys, 1)
	assert.Equal(t, "POST /quotes", keys.keys[0].Endpoint)
}

func TestIdempotencyIgnoresExpiredKeys(t *testing.T) {
	userID, tenantID := uuid.New(), uuid.New()
	keys := &memKeys{keys: []*entity.IdempotencyKey{{
		Key:          "old",
		TenantID:     tenantID,
		UserID:       userID,
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"stale":true}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}}}

	r := gin.New()
	r.Use(withIdentity(userID, tenantID))
	r.POST("/quotes", Idempotency(IdempotencyConfig{Repo: keys, Log: zap.NewNop()}), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"stale": false})
	})

	w := serve(r, http.MethodPost, "/quotes", IdempotencyKeyHeader, "old")
	assert.JSONEq(t, `{"stale":false}`, w.Body.String())
}

func TestRateLimiterPerTenant(t *testing.T) {
	limiter := NewTenantRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	t.Cleanup(limiter.Close)
	busy, quiet := uuid.New(), uuid.New()

	newRouter := func(tenantID uuid.UUID) *gin.Engine {
		r := gin.New()
		r.Use(withIdentity(uuid.New(), tenantID), limiter.Middleware())
		r.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	r := newRouter(busy)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/quotes").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/quotes").Code)

	w := serve(r, http.MethodGet, "/quotes")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 1, "next token is far away at this rate")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(newRouter(quiet), http.MethodGet, "/quotes").Code)
	assert.Equal(t, 2, limiter.Stats()["active_tenants"])
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(LoggerMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := serve(r, http.MethodGet, "/ok", "X-Request-ID", "req-1")
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/boom")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestCORSExposesQuoteHeaders(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedHeaders: []string{"X-Custom"}}))
	r.POST("/quotes", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := serve(r, http.MethodOptions, "/quotes",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "POST",
		"Access-Control-Request-Headers", "Idempotency-Key",
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader)

	w = serve(r, http.MethodPost, "/quotes", "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
