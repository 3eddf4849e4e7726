package diagnostics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	png     []byte
	html    string
	shotErr error
	htmlErr error
}

func (f *fakeSource) Screenshot(context.Context) ([]byte, error) { return f.png, f.shotErr }
func (f *fakeSource) HTML(context.Context) (string, error)       { return f.html, f.htmlErr }

func fixedRecorder(dir string) *Recorder {
	r := NewRecorder(dir, nil)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return r
}

func TestCapture_WritesBothArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	r := fixedRecorder(dir)

	snap := r.Capture(context.Background(), &fakeSource{png: []byte("png-bytes"), html: "<html></html>"}, "error_lead_processing")

	require.NoError(t, snap.Err)
	assert.Equal(t, filepath.Join(dir, "20260314_092653_error_lead_processing.png"), snap.ImagePath)
	assert.Equal(t, filepath.Join(dir, "20260314_092653_error_lead_processing_page_source.html"), snap.MarkupPath)

	img, err := os.ReadFile(snap.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(img))

	html, err := os.ReadFile(snap.MarkupPath)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(html))
}

func TestCapture_CreatesDirectoryOnFirstUse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "diag")
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	fixedRecorder(dir).Capture(context.Background(), &fakeSource{html: "x"}, "landing_page")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCapture_ScreenshotFailureStillWritesMarkup(t *testing.T) {
	r := fixedRecorder(t.TempDir())

	snap := r.Capture(context.Background(), &fakeSource{shotErr: errors.New("no target"), html: "<p>hi</p>"}, "critical_failure")

	require.Error(t, snap.Err)
	assert.Contains(t, snap.Err.Error(), "failed to capture screenshot")
	assert.Empty(t, snap.ImagePath)
	assert.NotEmpty(t, snap.MarkupPath)
}

func TestCapture_SanitizesActionLabel(t *testing.T) {
	r := fixedRecorder(t.TempDir())

	snap := r.Capture(context.Background(), &fakeSource{html: "x"}, "failed scrape/../3")

	assert.Equal(t, "failed_scrape_3", snap.Action)
	assert.Equal(t, r.Dir(), filepath.Dir(snap.MarkupPath))
}

func TestCapture_NilSource(t *testing.T) {
	snap := fixedRecorder(t.TempDir()).Capture(context.Background(), nil, "x")
	require.Error(t, snap.Err)
	assert.Empty(t, snap.ImagePath)
	assert.Empty(t, snap.MarkupPath)
}
