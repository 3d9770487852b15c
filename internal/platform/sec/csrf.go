// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// CSRFTokenLength is the byte length of the random anti-forgery token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const CSRFTokenLength = 32

// GenerateCSRFToken returns an opaque random token for the double-submit
// cookie pattern.
//
// The value carries no embedded semantics and is not cryptographically tied
// to the access token. Validation is a plain equality check between the
// cookie and the header copy, performed by the authentication gate.
func GenerateCSRFToken() (string, error) {
	return GenerateSecureToken(CSRFTokenLength)
}

// GenerateSecureToken returns a hex-encoded random string of byteLength bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read entropy: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
