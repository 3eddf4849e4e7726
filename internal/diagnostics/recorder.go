// Package diagnostics captures timestamped snapshots (screenshot plus raw page markup)
// to a local artifact directory for post-run debugging.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout prefixes every artifact file name.
const TimestampLayout = "20060102_150405"

// Source is a page that can render an image snapshot and expose its markup.
type Source interface {
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}

// Snapshot describes the artifacts written for one captured action.
// A path is empty when that artifact could not be written.
type Snapshot struct {
	Action     string
	Taken      time.Time
	ImagePath  string
	MarkupPath string
	Err        error
}

// Recorder writes snapshots into a directory, creating it on first use.
type Recorder struct {
	dir string
	now func() time.Time
	log *zap.Logger
}

// NewRecorder creates a Recorder rooted at dir.
func NewRecorder(dir string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		dir: dir,
		now: time.Now,
		log: logger.Named("diagnostics"),
	}
}

// Dir returns the artifact directory.
func (r *Recorder) Dir() string {
	return r.dir
}

var unsafeLabel = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Capture writes <timestamp>_<action>.png and <timestamp>_<action>_page_source.html.
// Each artifact is best effort; failures are logged and reported on the Snapshot.
func (r *Recorder) Capture(ctx context.Context, src Source, action string) Snapshot {
	snap := Snapshot{
		Action: unsafeLabel.ReplaceAllString(action, "_"),
		Taken:  r.now(),
	}
	if snap.Action == "" {
		snap.Action = "snapshot"
	}

	if src == nil {
		snap.Err = fmt.Errorf("no page to capture for %s", snap.Action)
		r.log.Warn("diagnostic capture skipped", zap.String("action", snap.Action), zap.Error(snap.Err))
		return snap
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		snap.Err = fmt.Errorf("failed to create diagnostics directory %s: %w", r.dir, err)
		r.log.Warn("diagnostic capture skipped", zap.String("action", snap.Action), zap.Error(snap.Err))
		return snap
	}

	prefix := filepath.Join(r.dir, snap.Taken.Format(TimestampLayout)+"_"+snap.Action)
	var errs []error

	if img, err := src.Screenshot(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to capture screenshot: %w", err))
	} else if err := os.WriteFile(prefix+".png", img, 0644); err != nil {
		errs = append(errs, fmt.Errorf("failed to write screenshot: %w", err))
	} else {
		snap.ImagePath = prefix + ".png"
	}

	if html, err := src.HTML(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to read page source: %w", err))
	} else if err := os.WriteFile(prefix+"_page_source.html", []byte(html), 0644); err != nil {
		errs = append(errs, fmt.Errorf("failed to write page source: %w", err))
	} else {
		snap.MarkupPath = prefix + "_page_source.html"
	}

	snap.Err = errors.Join(errs...)
	if snap.Err != nil {
		r.log.Warn("diagnostic capture incomplete", zap.String("action", snap.Action), zap.Error(snap.Err))
	} else {
		r.log.Debug("diagnostic snapshot captured",
			zap.String("action", snap.Action),
			zap.String("image", snap.ImagePath),
			zap.String("markup", snap.MarkupPath))
	}
	return snap
}
