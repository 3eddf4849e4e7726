package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-harvester/internal/extract"
)

const savedProfile = `<html><body>
<section><h1>Grace Hopper</h1><div class="text-body-medium">Rear Admiral</div></section>
<section><div id="about"></div><span>Invented the first compiler.</span></section>
</body></html>`

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "20260314_092653_failed_scrape_0_page_source.html")
	require.NoError(t, os.WriteFile(path, []byte(savedProfile), 0644))
	return path
}

func TestExtractCommand_JSON(t *testing.T) {
	path := writeProfile(t)

	output, err := executeCommand(t, "", "extract", path, "--json", "--id", "https://www.linkedin.com/in/grace")
	require.NoError(t, err)

	var rec extract.Record
	require.NoError(t, json.Unmarshal([]byte(output), &rec))
	assert.Equal(t, "https://www.linkedin.com/in/grace", rec.Identifier)
	assert.Equal(t, "Grace Hopper", rec.FullName)
	assert.Equal(t, "Rear Admiral", rec.Headline)
	assert.Contains(t, rec.About, "Invented the first compiler.")
	assert.Equal(t, []extract.Field{extract.FieldExperience}, rec.Missing)
}

func TestExtractCommand_Box(t *testing.T) {
	path := writeProfile(t)

	output, err := executeCommand(t, "", "extract", path)
	require.NoError(t, err)

	assert.Contains(t, output, "EXTRACTED PROFILE")
	assert.Contains(t, output, "Grace Hopper")
}

func TestExtractCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "", "extract", filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
