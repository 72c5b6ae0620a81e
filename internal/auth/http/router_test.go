package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelos-in/auth/internal/auth/audit"
	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/notify"
	"github.com/fuelos-in/auth/internal/auth/service"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/internal/auth/store/drivers/sqlite"
	"github.com/fuelos-in/auth/pkg/cryptox"
	"github.com/fuelos-in/auth/pkg/idx"
	"github.com/fuelos-in/auth/pkg/jwtx"
)

type testServer struct {
	*httptest.Server
	store store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tenantJWT, err := jwtx.NewHS256("tenant-test-secret", "FuelOS")
	require.NoError(t, err)
	staffJWT, err := jwtx.NewHS256("staff-test-secret", "FuelOS")
	require.NoError(t, err)

	dispatcher := audit.NewDispatcher(st.Audit(), log)
	t.Cleanup(dispatcher.Close)

	sessions := service.NewSessionService(st, tenantJWT, staffJWT, "FuelOS", log)
	notifier := &notify.LogNotifier{Log: log}

	rt := &Router{
		Log:                 log,
		Login:               service.NewLoginService(st, sessions, dispatcher, log),
		Challenges:          service.NewChallengeService(st, sessions, notifier, dispatcher, log, 10*time.Minute),
		MFA:                 service.NewMFAService(st, dispatcher, "FuelOS", log),
		Passwords:           service.NewPasswordService(st, dispatcher, log),
		StaffMgmt:           service.NewStaffService(st, dispatcher, log),
		Store:               st,
		TenantVerifier:      tenantJWT,
		StaffVerifier:       staffJWT,
		ExposeChallengeCode: true,
	}

	mux := http.NewServeMux()
	rt.ApplyRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: st}
}

func (s *testServer) seedOwner(t *testing.T, email, password string) domain.User {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Owner",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleOwner,
		Status:       domain.StatusActive,
	}
	require.NoError(t, s.store.TenantUsers().Create(context.Background(), u))
	return u
}

func (s *testServer) seedAdmin(t *testing.T, email, password string) domain.StaffUser {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	u := domain.StaffUser{
		ID:           idx.New().String(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
	}
	require.NoError(t, s.store.Staff().Create(context.Background(), u))
	return u
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var fields map[string]json.RawMessage
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &fields))
	}
	return resp, fields
}

func jsonString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestLoginEndpoint_Success(t *testing.T) {
	srv := newTestServer(t)
	u := srv.seedOwner(t, "owner@example.com", "owner123")

	resp, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "owner123",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, jsonString(t, body["token"]))
	assert.Equal(t, u.ID, jsonString(t, body["tenantId"]))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.seedOwner(t, "owner@example.com", "owner123")

	resp, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", jsonString(t, body["error"]))
}

func TestLoginEndpoint_BadRole(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "admin", Email: "a@example.com", Password: "x",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_role", jsonString(t, body["error"]))
}

func TestAdminLoginVerifyFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seedAdmin(t, "admin@example.com", "admin123")

	resp, body := srv.do(t, http.MethodPost, "/v1/auth/admin-login", "", adminLoginRequest{
		Role: "admin", Email: "admin@example.com", Password: "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var twoFA bool
	require.NoError(t, json.Unmarshal(body["twoFactorRequired"], &twoFA))
	assert.False(t, twoFA)
	code := jsonString(t, body["code"])
	require.Regexp(t, `^\d{6}$`, code)

	resp, body = srv.do(t, http.MethodPost, "/v1/auth/admin-verify", "", adminVerifyRequest{
		Role: "admin", Email: "admin@example.com", Code: code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := jsonString(t, body["token"])
	require.NotEmpty(t, token)

	// The issued token works on /me.
	resp, body = srv.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, admin.ID, jsonString(t, body["id"]))
	assert.Equal(t, "admin", jsonString(t, body["role"]))

	// Replaying the code fails.
	resp, body = srv.do(t, http.MethodPost, "/v1/auth/admin-verify", "", adminVerifyRequest{
		Role: "admin", Email: "admin@example.com", Code: code,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_or_expired_challenge", jsonString(t, body["error"]))
}

func TestMeEndpoint_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeEndpoint_TenantToken(t *testing.T) {
	srv := newTestServer(t)
	u := srv.seedOwner(t, "owner@example.com", "owner123")

	_, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "owner123",
	})
	token := jsonString(t, body["token"])

	resp, body := srv.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, u.ID, jsonString(t, body["id"]))
	assert.Equal(t, "owner", jsonString(t, body["role"]))
	assert.Equal(t, u.ID, jsonString(t, body["tenantId"]))
}

func TestChangePasswordEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedOwner(t, "owner@example.com", "owner123")

	_, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "owner123",
	})
	token := jsonString(t, body["token"])

	resp, _ := srv.do(t, http.MethodPatch, "/v1/auth/password", token, changePasswordRequest{
		CurrentPassword: "owner123", NewPassword: "newpassword1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, respBody := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "owner123",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", jsonString(t, respBody["error"]))

	resp, _ = srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "newpassword1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTwoFAEndpoints_RequireStaffToken(t *testing.T) {
	srv := newTestServer(t)
	srv.seedOwner(t, "owner@example.com", "owner123")

	_, body := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Role: "owner", Email: "owner@example.com", Password: "owner123",
	})
	token := jsonString(t, body["token"])

	// A tenant token signs with the wrong secret for staff endpoints.
	resp, _ := srv.do(t, http.MethodPost, "/v1/auth/2fa/setup", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStaffEndpoints_SuperadminOnly(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAdmin(t, "admin@example.com", "admin123")

	_, body := srv.do(t, http.MethodPost, "/v1/auth/admin-login", "", adminLoginRequest{
		Role: "admin", Email: "admin@example.com", Password: "admin123",
	})
	code := jsonString(t, body["code"])
	_, body = srv.do(t, http.MethodPost, "/v1/auth/admin-verify", "", adminVerifyRequest{
		Role: "admin", Email: "admin@example.com", Code: code,
	})
	adminToken := jsonString(t, body["token"])

	// Admins may list staff but not create them.
	resp, _ := srv.do(t, http.MethodGet, "/v1/auth/company-users", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, respBody := srv.do(t, http.MethodPost, "/v1/auth/company-users", adminToken, createStaffRequest{
		Role: "monitor", Name: "Watcher", Email: "watch@example.com", Password: "watch1234",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", jsonString(t, respBody["error"]))
}

func TestStaffLifecycleAsSuperadmin(t *testing.T) {
	srv := newTestServer(t)
	hash, err := cryptox.HashPassword("root1234")
	require.NoError(t, err)
	require.NoError(t, srv.store.Staff().Create(context.Background(), domain.StaffUser{
		ID: idx.New().String(), Name: "Root", Email: "root@example.com",
		PasswordHash: hash, Role: domain.RoleSuperAdmin, Status: domain.StatusActive,
	}))

	_, body := srv.do(t, http.MethodPost, "/v1/auth/admin-login", "", adminLoginRequest{
		Role: "superadmin", Password: "root1234",
	})
	code := jsonString(t, body["code"])
	_, body = srv.do(t, http.MethodPost, "/v1/auth/admin-verify", "", adminVerifyRequest{
		Role: "superadmin", Code: code,
	})
	token := jsonString(t, body["token"])
	require.NotEmpty(t, token)

	resp, body := srv.do(t, http.MethodPost, "/v1/auth/company-users", token, createStaffRequest{
		Role: "caller", Name: "Caller", Email: "caller@example.com", Password: "caller1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := jsonString(t, body["id"])

	resp, _ = srv.do(t, http.MethodPatch, "/v1/auth/company-users/"+id+"/password", token, resetPasswordRequest{
		NewPassword: "rotated123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The rotated password works on admin-login.
	resp, _ = srv.do(t, http.MethodPost, "/v1/auth/admin-login", "", adminLoginRequest{
		Role: "caller", Email: "caller@example.com", Password: "rotated123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodDelete, "/v1/auth/company-users/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodDelete, "/v1/auth/company-users/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
