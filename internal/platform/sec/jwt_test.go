// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduseek/eduseek/internal/platform/sec"
)

const (
	testSecret = "unit-test-signing-secret"
	testIssuer = "eduseek.test"
)

func newCodec(t *testing.T) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec(testSecret, testIssuer)
	require.NoError(t, err)
	return codec
}

/*
TestTokenCodec_RoundTrip verifies that an issued token parses back to the
original claims.
*/
func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Issue("alice", "admin", "", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Empty(t, claims.Purpose)
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestTokenCodec_PurposeClaim verifies that the purpose label travels inside
the token.
*/
func TestTokenCodec_PurposeClaim(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Issue("bob", "parent", "REFRESH_TOKEN", time.Hour)
	require.NoError(t, err)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "REFRESH_TOKEN", claims.Purpose)
}

/*
TestTokenCodec_EmptySecret verifies that the codec refuses to start without
a signing secret.
*/
func TestTokenCodec_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenCodec("", testIssuer)
	assert.Error(t, err)
}

/*
TestTokenCodec_Expired verifies that an expired token is rejected by Parse
but still readable via ParseIgnoringExpiry.
*/
func TestTokenCodec_Expired(t *testing.T) {
	codec := newCodec(t)

	// Negative TTL: the token is already expired the moment it is issued.
	token, err := codec.Issue("carol", "school_owner", "", -1*time.Minute)
	require.NoError(t, err)

	// 1. Parse must reject it as expired
	_, err = codec.Parse(token)
	require.Error(t, err)
	assert.True(t, sec.IsExpired(err))

	// 2. ParseIgnoringExpiry must still recover the subject
	claims, err := codec.ParseIgnoringExpiry(token)
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.Subject)
	assert.Equal(t, "school_owner", claims.Role)
}

/*
TestTokenCodec_WrongSecret verifies that signature verification is never
skipped, not even by ParseIgnoringExpiry.
*/
func TestTokenCodec_WrongSecret(t *testing.T) {
	codec := newCodec(t)
	otherCodec, err := sec.NewTokenCodec("a-completely-different-secret", testIssuer)
	require.NoError(t, err)

	token, err := otherCodec.Issue("mallory", "admin", "", time.Hour)
	require.NoError(t, err)

	_, err = codec.Parse(token)
	require.Error(t, err)
	assert.False(t, sec.IsExpired(err))

	_, err = codec.ParseIgnoringExpiry(token)
	assert.Error(t, err)
}

/*
TestTokenCodec_Malformed verifies that garbage input fails cleanly.
*/
func TestTokenCodec_Malformed(t *testing.T) {
	codec := newCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "hello-world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Parse(tt.token)
			assert.Error(t, err)

			_, err = codec.ParseIgnoringExpiry(tt.token)
			assert.Error(t, err)
		})
	}
}
