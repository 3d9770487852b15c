// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package sec_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduseek/eduseek/internal/platform/sec"
)

/*
TestGenerateCSRFToken verifies length, encoding, and uniqueness of the
anti-forgery token.
*/
func TestGenerateCSRFToken(t *testing.T) {
	first, err := sec.GenerateCSRFToken()
	require.NoError(t, err)

	// 32 bytes hex-encoded = 64 characters
	assert.Len(t, first, sec.CSRFTokenLength*2)

	_, err = hex.DecodeString(first)
	assert.NoError(t, err, "token must be valid hex")

	second, err := sec.GenerateCSRFToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

/*
TestGenerateSecureToken verifies arbitrary-length token generation.
*/
func TestGenerateSecureToken(t *testing.T) {
	tests := []struct {
		name       string
		byteLength int
	}{
		{"short", 8},
		{"default", 32},
		{"long", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := sec.GenerateSecureToken(tt.byteLength)
			require.NoError(t, err)
			assert.Len(t, token, tt.byteLength*2)
		})
	}
}
