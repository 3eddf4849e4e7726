package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "  Hi Ada, great work.  ", "Hi Ada, great work."},
		{"fenced with language", "```text\nHi Ada\n```", "Hi Ada"},
		{"fenced without language", "```\nHi Ada, welcome aboard\n```", "Hi Ada, welcome aboard"},
		{"double quoted", `"Hi Ada"`, "Hi Ada"},
		{"smart quoted", "“Hi Ada”", "Hi Ada"},
		{"single quote char", `"`, `"`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}
