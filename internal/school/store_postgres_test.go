// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package school

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestEscapeLikePattern verifies that user search text cannot smuggle LIKE
wildcards into the catalogue query.
*/
func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain_text", "greenfield", "greenfield"},
		{"percent_wildcard", "%", `\%`},
		{"underscore_wildcard", "a_b", `a\_b`},
		{"backslash", `a\b`, `a\\b`},
		{"combined", `100%_done\`, `100\%\_done\\`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLikePattern(tt.input))
		})
	}
}
