// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/ctxutil"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns validate.ErrInvalidJSON if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Principal extracts the authenticated principal claims from the request
// context. Returns nil if the request is anonymous.
func Principal(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetPrincipal(request.Context())
}

// RequiredPrincipal ensures the request is authenticated and returns the claims.
//
// Returns:
//   - *sec.AuthClaims: The authenticated principal claims
//   - error: apperr.Unauthorized if the request is not authenticated
func RequiredPrincipal(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetPrincipal(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUsername returns the username of the currently logged-in principal.
func RequiredUsername(request *http.Request) (string, error) {
	claims, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}
