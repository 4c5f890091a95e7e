package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRichText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text",
			input: "Hello, World!",
			want:  "Hello, World!",
		},
		{
			name:  "allowed markup kept",
			input: "<p>Hello, <strong>World</strong>!</p>",
			want:  "<p>Hello, <strong>World</strong>!</p>",
		},
		{
			name:  "script tag stripped",
			input: "<script>alert('Hello, World!');</script>",
			want:  "",
		},
		{
			name:  "uppercase script tag stripped",
			input: `before<SCRIPT SRC="evil.js"></SCRIPT>after`,
			want:  "beforeafter",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeRichText(tc.input))
		})
	}
}
