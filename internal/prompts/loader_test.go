package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_DraftingPrompt(t *testing.T) {
	reset()

	prompt, err := Get("drafting.json", "outreach-greeting")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Profile}}")
}

func TestGet_InvalidFile(t *testing.T) {
	reset()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	reset()

	_, err := Get("drafting.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_CachesParsedFile(t *testing.T) {
	reset()

	first, err := Load("drafting.json")
	require.NoError(t, err)
	second, err := Load("drafting.json")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"outreach-greeting"}, first.Keys())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{"substitutes", "Hi {{.Name}}, I saw your work at {{.Company}}.", map[string]string{"Name": "Ada", "Company": "Analytical Engines"}, "Hi Ada, I saw your work at Analytical Engines."},
		{"no placeholders", "No placeholders here", map[string]string{"Key": "Value"}, "No placeholders here"},
		{"unknown placeholder kept", "Hi {{.Name}}", map[string]string{}, "Hi {{.Name}}"},
		{"value is not re-expanded", "{{.A}}", map[string]string{"A": "{{.B}}", "B": "x"}, "{{.B}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender_EmbedsProfile(t *testing.T) {
	prompt, err := Render("drafting.json", "outreach-greeting", map[string]string{"Profile": "Name: Ada Lovelace\n"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "first outreach message")
	assert.True(t, strings.HasSuffix(prompt, "Name: Ada Lovelace\n"))
	assert.NotContains(t, prompt, "{{.Profile}}")
}
