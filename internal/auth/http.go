// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

/*
Package auth: HTTP delivery layer for the session lifecycle.

It implements the gateway endpoints for login, refresh, logout, and password
recovery.

# Architecture

The handler acts as a thin mediation layer between the web and the session
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Owns the ACCESS_TOKEN / CSRF_TOKEN cookie pair. The access
    cookie is http-only; the CSRF cookie is readable by client scripts so
    its value can be echoed in the X-CSRF-TOKEN header.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/constants"
	requestutil "github.com/eduseek/eduseek/internal/platform/request"
	"github.com/eduseek/eduseek/internal/platform/respond"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login/admin     : Authenticates; permitted role: admin.
//   - POST /login/public    : Authenticates; any active role.
//   - PUT  /refresh-token   : Rotates the access+CSRF pair.
//   - POST /logout          : Clears the registry entry and cookies.
//   - POST /forgot-password : Issues a single-use reset token.
//   - POST /reset-password  : Consumes the reset token.
//
// The login and password endpoints sit on the gate's public allow-list;
// refresh and logout do not, so the gate enforces CSRF on them.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login/admin", handler.loginAdmin)
	router.Post("/login/public", handler.loginPublic)
	router.Put("/refresh-token", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

/*
loginAdmin authenticates against the admin-only endpoint.

POST /api/v1/auth/login/admin

Response:
  - 200: Session payload; ACCESS_TOKEN and CSRF_TOKEN cookies set
  - 401: ErrUnauthorized: Invalid credentials
  - 403: ErrForbidden: Credentials valid but role is not admin
*/
func (handler *Handler) loginAdmin(writer http.ResponseWriter, request *http.Request) {
	handler.login(writer, request, sec.RoleAdmin)
}

/*
loginPublic authenticates school owners and parents (admins may also use it).

POST /api/v1/auth/login/public
*/
func (handler *Handler) loginPublic(writer http.ResponseWriter, request *http.Request) {
	handler.login(writer, request, sec.AllRoles...)
}

// login is the shared credential flow; permitted names the endpoint's role set.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request, permitted ...sec.Role) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	}, permitted...)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldCsrfToken:   session.CsrfToken,
		FieldUser:        session.User,
	})
}

/*
refresh issues a new access+CSRF pair using the registry-held refresh token.

PUT /api/v1/auth/refresh-token

The gate has already verified CSRF. The access-token cookie may be expired;
its subject is recovered signature-only and validated against the registry.

Response:
  - 200: New access token credentials; cookies rotated
  - 401: Missing/invalid access token, or no valid refresh entry
  - 503: Token registry unreachable
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Access token is empty"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldCsrfToken:   session.CsrfToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(time.Until(session.AccessTokenExpiresAt) / time.Second),
	})
}

/*
logout terminates the current session.

POST /api/v1/auth/logout

The subject is recovered from the access-token cookie signature-only, so
logout still works after the access token has expired. The registry entry is
deleted and both cookies are cleared.

Response:
  - 204: No Content: Session terminated (idempotent)
  - 401: Missing or forged access token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Access token is empty"))
		return
	}

	claims, err := handler.authService.codec.ParseIgnoringExpiry(cookie.Value)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Invalid Access Token"))
		return
	}

	if err := handler.authService.Logout(request.Context(), claims.Subject); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)
	respond.NoContent(writer)
}

/*
forgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Response:
  - 200: Generic security message regardless of whether the email exists
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
resetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Response:
  - 200: Success: Password updated; active session revoked
  - 401: Invalid, expired, superseded, or already-consumed reset token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Cookie Helpers

// setSessionCookies installs the access+CSRF pair on the response.
//
// ACCESS_TOKEN is http-only. CSRF_TOKEN is intentionally NOT http-only: the
// client script must read it to echo it back in the X-CSRF-TOKEN header
// (double-submit pattern).
//
// Both cookies expire at the end of the refresh window, not when the access
// token does: the refresh flow needs the client to still present the expired
// access token. Server-side validity is bounded by the token signatures and
// the registry entry, never by cookie lifetime.
func setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.AuthCookiePath,
		Expires:  session.RefreshExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.CSRFTokenCookieName,
		Value:    session.CsrfToken,
		Path:     constants.AuthCookiePath,
		Expires:  session.RefreshExpiresAt,
		Secure:   true,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both auth cookies on the client.
func clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.CSRFTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.AuthCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: name == constants.AccessTokenCookieName,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
