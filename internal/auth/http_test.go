// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduseek/eduseek/internal/auth"
	"github.com/eduseek/eduseek/internal/platform/constants"
	"github.com/eduseek/eduseek/internal/platform/ctxutil"
	"github.com/eduseek/eduseek/internal/platform/middleware"
	"github.com/eduseek/eduseek/internal/platform/sec"
)

// # End-to-End Router Fixture

// newTestRouter assembles the real gate + auth routes plus one protected
// probe endpoint, backed by the in-memory fakes.
func newTestRouter(f *fixture) *chi.Mux {
	public := []middleware.PublicRoute{
		{Method: http.MethodPost, Prefix: "/api/v1/auth/login"},
		{Method: http.MethodPost, Prefix: "/api/v1/auth/forgot-password"},
		{Method: http.MethodPost, Prefix: "/api/v1/auth/reset-password"},
	}

	router := chi.NewRouter()
	router.Use(middleware.Gate(f.codec, f.service, public))
	router.Mount("/api/v1/auth", auth.NewHandler(f.service).Routes())

	// Probe endpoint standing in for any authenticated domain route.
	router.With(middleware.RequireAuth).Get("/api/v1/profile", func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte(claims.Username))
	})

	return router
}

// sessionCookies extracts the auth cookie pair from a response.
func sessionCookies(t *testing.T, recorder *httptest.ResponseRecorder) (access, csrf *http.Cookie) {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		switch cookie.Name {
		case constants.AccessTokenCookieName:
			access = cookie
		case constants.CSRFTokenCookieName:
			csrf = cookie
		}
	}
	return access, csrf
}

// doLogin performs a login request and requires it to succeed.
func doLogin(t *testing.T, router *chi.Mux, path, login, password string) (access, csrf *http.Cookie) {
	t.Helper()
	body := `{"login":"` + login + `","password":"` + password + `"}`

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	access, csrf = sessionCookies(t, recorder)
	require.NotNil(t, access)
	require.NotNil(t, csrf)
	return access, csrf
}

// authedRequest builds a request carrying the session cookies and the CSRF
// header echo.
func authedRequest(method, path, body string, access, csrf *http.Cookie) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if access != nil {
		request.AddCookie(access)
	}
	if csrf != nil {
		request.AddCookie(csrf)
		request.Header.Set(constants.HeaderXCSRFToken, csrf.Value)
	}
	return request
}

// # Session Lifecycle

/*
TestHTTP_LoginLogoutFlow walks the full lifecycle: login, authenticated
request, logout, and the post-logout refresh denial.
*/
func TestHTTP_LoginLogoutFlow(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	// 1. Login
	access, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)
	assert.True(t, access.HttpOnly, "access cookie must be http-only")
	assert.False(t, csrf.HttpOnly, "csrf cookie must be script-readable")

	// 2. Authenticated request succeeds
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/v1/profile", "", access, csrf))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "alice", recorder.Body.String())

	// 3. Logout clears the session
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/v1/auth/logout", "", access, csrf))
	require.Equal(t, http.StatusNoContent, recorder.Code)

	clearedAccess, clearedCsrf := sessionCookies(t, recorder)
	require.NotNil(t, clearedAccess)
	require.NotNil(t, clearedCsrf)
	assert.Empty(t, clearedAccess.Value)
	assert.Empty(t, clearedCsrf.Value)

	// 4. Refresh after logout is denied: the registry entry is gone
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/api/v1/auth/refresh-token", "", access, csrf))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHTTP_SessionCookiesSpanRefreshWindow verifies that the cookie pair lives
until the refresh window closes, not until the access token expires.

A cookie-respecting browser deletes expired cookies; if the pair died with
the access token the client could never present it to the refresh endpoint,
locking out every session after one access TTL.
*/
func TestHTTP_SessionCookiesSpanRefreshWindow(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	// Fixture TTLs: access 15m, refresh 7d.
	access, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)

	accessExpiry := time.Now().Add(15 * time.Minute)
	nearRefreshExpiry := time.Now().Add(6 * 24 * time.Hour)

	assert.True(t, access.Expires.After(accessExpiry),
		"access cookie must survive access token expiry")
	assert.True(t, access.Expires.After(nearRefreshExpiry),
		"access cookie must last for the refresh window")
	assert.True(t, csrf.Expires.After(nearRefreshExpiry),
		"csrf cookie must last for the refresh window")
}

/*
TestHTTP_RefreshFlow verifies that an expired access token can be exchanged
for a fresh pair while the refresh entry is live.
*/
func TestHTTP_RefreshFlow(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	_, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)

	// Swap in an access token that has already expired.
	expiredToken, err := f.codec.Issue("alice", "parent", "", -1*time.Minute)
	require.NoError(t, err)
	expiredAccess := &http.Cookie{Name: constants.AccessTokenCookieName, Value: expiredToken}

	// 1. The protected route rejects the expired token (silently anonymous).
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/v1/profile", "", expiredAccess, csrf))
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 2. Refresh with the same expired token succeeds.
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/api/v1/auth/refresh-token", "", expiredAccess, csrf))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Data[auth.FieldAccessToken])
	assert.Equal(t, "Bearer", payload.Data[auth.FieldTokenType])

	// 3. The rotated cookies work on the protected route again.
	newAccess, newCsrf := sessionCookies(t, recorder)
	require.NotNil(t, newAccess)
	require.NotNil(t, newCsrf)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/v1/profile", "", newAccess, newCsrf))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestHTTP_CSRFEnforcement verifies that a state-changing request without the
header echo is blocked before any handler runs.
*/
func TestHTTP_CSRFEnforcement(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	access, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)

	t.Run("missing_header", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		request.AddCookie(access)
		request.AddCookie(csrf)
		// Deliberately no X-CSRF-TOKEN header.

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("mismatched_header", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		request.AddCookie(access)
		request.AddCookie(csrf)
		request.Header.Set(constants.HeaderXCSRFToken, "attacker-supplied-value")

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("session_still_alive_after_blocked_attempts", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/v1/profile", "", access, csrf))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

// # Role-Gated Login

/*
TestHTTP_AdminLoginRoleGate verifies the 401-vs-403 distinction on the
admin-only login endpoint.
*/
func TestHTTP_AdminLoginRoleGate(t *testing.T) {
	f := newFixture(t,
		activeUser(t, "root", sec.RoleAdmin),
		activeUser(t, "alice", sec.RoleParent),
	)
	router := newTestRouter(f)

	t.Run("admin_accepted", func(t *testing.T) {
		doLogin(t, router, "/api/v1/auth/login/admin", "root", testPassword)
	})

	t.Run("parent_with_valid_credentials_forbidden", func(t *testing.T) {
		body := `{"login":"alice","password":"` + testPassword + `"}`
		request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login/admin", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("parent_with_bad_credentials_unauthorized", func(t *testing.T) {
		body := `{"login":"alice","password":"wrong"}`
		request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login/admin", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

// # Password Recovery

/*
TestHTTP_PasswordResetFlow verifies the end-to-end recovery path and that a
successful reset revokes the live session.
*/
func TestHTTP_PasswordResetFlow(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	access, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)

	// 1. Request a reset; the response is the same for any email.
	body := `{"email":"alice@example.com"}`
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, f.mailer.lastToken)

	// 2. Complete the reset with the emailed token.
	body = `{"token":"` + f.mailer.lastToken + `","password":"a-fresh-password-1"}`
	request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/reset-password", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// 3. The old session can no longer refresh.
	expiredToken, err := f.codec.Issue("alice", "parent", "", -1*time.Minute)
	require.NoError(t, err)
	expiredAccess := &http.Cookie{Name: constants.AccessTokenCookieName, Value: expiredToken}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/api/v1/auth/refresh-token", "", expiredAccess, csrf))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Existing not-yet-expired access tokens keep working until expiry;
	// revocation targets the refresh path.
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/v1/profile", "", access, csrf))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestHTTP_RefreshWithoutCookie verifies the missing-cookie guard on refresh.
*/
func TestHTTP_RefreshWithoutCookie(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	_, csrf := doLogin(t, router, "/api/v1/auth/login/public", "alice", testPassword)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/api/v1/auth/refresh-token", "", nil, csrf))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHTTP_LoginValidation verifies the input validation on the login payload.
*/
func TestHTTP_LoginValidation(t *testing.T) {
	f := newFixture(t, activeUser(t, "alice", sec.RoleParent))
	router := newTestRouter(f)

	tests := []struct {
		name string
		body string
	}{
		{"malformed_json", `{"login": `},
		{"missing_login", `{"password":"x"}`},
		{"missing_password", `{"login":"alice"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login/public", strings.NewReader(tt.body))
			request.Header.Set("Content-Type", "application/json")

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}
