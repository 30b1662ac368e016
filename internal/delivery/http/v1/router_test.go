package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"job-portal-backend/config"
	"job-portal-backend/internal/delivery/http/middleware"
	"job-portal-backend/internal/domain"
	"job-portal-backend/internal/usecase"
	"job-portal-backend/pkg/apperror"
	"job-portal-backend/pkg/auth"
	"job-portal-backend/pkg/logger"
	"job-portal-backend/pkg/metrics"
	"job-portal-backend/pkg/password"
	"job-portal-backend/pkg/security"
	"job-portal-backend/pkg/storage"
	"job-portal-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directory is an in-memory account store enforcing unique emails.
type directory struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	down     bool
}

func (d *directory) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (d *directory) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (d *directory) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.accounts {
		if a.Email == account.Email {
			return nil, apperror.Conflict(domain.MsgEmailTaken)
		}
	}
	created := *account
	created.ID = fmt.Sprintf("acc-%d", len(d.accounts)+1)
	d.accounts[created.ID] = created
	return &created, nil
}

func (d *directory) Save(ctx context.Context, account *domain.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[account.ID] = *account
	return nil
}

func (d *directory) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.down {
		return errors.New("connection refused")
	}
	return nil
}

func newTestServer(t *testing.T) (*gin.Engine, *directory, usecase.HealthUsecase) {
	t.Helper()
	cfg := &config.Config{
		CookieName:                 "token",
		CookieMaxAge:               5 * 24 * time.Hour,
		MaxUploadBytes:             1 << 20,
		AllowedOrigins:             []string{"http://localhost:5173"},
		RateLimitWindowSeconds:     60,
		RateLimitLoginThreshold:    100,
		RateLimitRegisterThreshold: 100,
		RateLimitGlobalThreshold:   1000,
	}

	dir := &directory{accounts: make(map[string]domain.Account)}
	hasher, err := password.NewBcrypt(password.Config{Cost: 4, MaxConcurrent: 2})
	require.NoError(t, err)
	issuer, err := auth.NewIssuer(auth.IssuerConfig{Secret: []byte("router-secret")})
	require.NoError(t, err)

	appMetrics := metrics.New()
	authUC := usecase.NewAuthUsecase(
		dir, hasher, issuer,
		storage.PlaceholderUploader{URL: config.DefaultPlaceholderAssetURL},
		usecase.JoinEvents(security.Nop(), appMetrics),
		validation.New([]string{"student", "recruiter"}),
		logger.Discard(),
		usecase.AuthConfig{PlaceholderAssetURL: config.DefaultPlaceholderAssetURL, CollaboratorTimeout: time.Second},
	)
	healthUC := usecase.NewHealthUsecase(time.Second, usecase.Probe{Name: "database", Check: dir.Ping})

	router := NewRouter(RouterDeps{
		AuthUC:      authUC,
		HealthUC:    healthUC,
		Issuer:      issuer,
		RateLimiter: middleware.NewRateLimiter(nil, security.Nop()),
		Metrics:     appMetrics,
		SecurityLog: security.Nop(),
		Logger:      logger.Discard(),
		Config:      cfg,
	})
	return router, dir, healthUC
}

func TestRouter_AccountLifecycle(t *testing.T) {
	router, dir, _ := newTestServer(t)

	w := serve(router, multipartRequest(t, http.MethodPost, "/api/v1/user/register", registrationFields(), nil))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, dir.accounts, 1)
	assert.NotEqual(t, "analytical-engine", dir.accounts["acc-1"].PasswordDigest)

	w = serve(router, multipartRequest(t, http.MethodPost, "/api/v1/user/register", registrationFields(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgEmailTaken, decodeBody(t, w).Message)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login",
		strings.NewReader(`{"email":"ada@example.com","password":"analytical-engine","role":"student"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.Equal(t, 432000, session.MaxAge)
	assert.True(t, session.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(session)
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"_id":"acc-1"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req = multipartRequest(t, http.MethodPost, "/api/v1/user/profile/update",
		map[string]string{"bio": "Poet of science", "skills": "math, engines"}, nil)
	req.AddCookie(session)
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skills":["math","engines"]`)
	assert.Equal(t, "Poet of science", dir.accounts["acc-1"].Profile.Bio)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/user/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: cleared[0].Value})
	w = serve(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domain.MsgNotAuthenticated, decodeBody(t, w).Message)
}

func TestRouter_LoginDoesNotRevealAccounts(t *testing.T) {
	router, _, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		serve(router, multipartRequest(t, http.MethodPost, "/api/v1/user/register", registrationFields(), nil)).Code)

	login := func(body string) string {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := serve(router, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		return decodeBody(t, w).Message
	}

	unknown := login(`{"email":"nobody@example.com","password":"analytical-engine","role":"student"}`)
	wrong := login(`{"email":"ada@example.com","password":"wrong","role":"student"}`)
	assert.Equal(t, unknown, wrong)
	assert.Equal(t, domain.MsgBadCredentials, wrong)

	assert.Equal(t, domain.MsgRoleMismatch,
		login(`{"email":"ada@example.com","password":"analytical-engine","role":"recruiter"}`))
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router, _, _ := newTestServer(t)

	for _, target := range []string{"/api/v1/user/me", "/api/v1/user/profile/update"} {
		method := http.MethodGet
		if strings.HasSuffix(target, "update") {
			method = http.MethodPost
		}
		w := serve(router, httptest.NewRequest(method, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestRouter_Health(t *testing.T) {
	router, dir, healthUC := newTestServer(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"pong"}`, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/startup", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	healthUC.MarkStarted()
	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/startup", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	dir.mu.Lock()
	dir.down = true
	dir.mu.Unlock()
	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database")
}

func TestRouter_Metrics(t *testing.T) {
	router, _, _ := newTestServer(t)
	serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/ping"`)
}
