// Package browser owns the single Chrome session: launch against a persistent
// profile, login verification and guaranteed teardown.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// DefaultUserAgent is a fixed desktop Chrome user agent presented on every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

var (
	// ErrProfileLocked is returned when another process holds the profile directory.
	ErrProfileLocked = errors.New("browser profile is in use by another process")
	// ErrClosed is returned by page operations after Close.
	ErrClosed = errors.New("browser session is closed")
)

// maskWebdriver hides the automation flag from page scripts on every new document.
const maskWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// State is the session lifecycle stage.
type State int

// Session states. AwaitingLogin is entered only while blocked on the operator.
const (
	StateUninitialized State = iota
	StateLaunched
	StateAwaitingLogin
	StateVerified
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLaunched:
		return "launched"
	case StateAwaitingLogin:
		return "awaiting_login"
	case StateVerified:
		return "verified"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options configures the browser launch.
type Options struct {
	ProfileDir    string        // persistent user data directory; cookies survive across runs
	ExecPath      string        // Chrome binary; empty uses chromedp's lookup
	UserAgent     string        // defaults to DefaultUserAgent
	Headless      bool          // visible window by default so the operator can log in
	WindowWidth   int           // defaults to 1366
	WindowHeight  int           // defaults to 900
	LandingURL    string        // page used to verify the session
	OpTimeout     time.Duration // bound on a single page operation, navigation included
	VerifyWaitMin time.Duration
	VerifyWaitMax time.Duration
}

// DefaultOptions returns launch options for profileDir.
func DefaultOptions(profileDir string) *Options {
	return &Options{
		ProfileDir:    profileDir,
		UserAgent:     DefaultUserAgent,
		WindowWidth:   1366,
		WindowHeight:  900,
		LandingURL:    "https://www.linkedin.com/",
		OpTimeout:     60 * time.Second,
		VerifyWaitMin: 3 * time.Second,
		VerifyWaitMax: 5 * time.Second,
	}
}

// launchFlags returns the Chrome command-line switches for opts.
// A false value removes a switch that chromedp enables by default.
func launchFlags(opts *Options) map[string]interface{} {
	return map[string]interface{}{
		"headless":                        opts.Headless,
		"enable-automation":               false,
		"disable-blink-features":          "AutomationControlled",
		"ignore-certificate-errors":       true,
		"ignore-ssl-errors":               true,
		"disable-infobars":                true,
		"force-webrtc-ip-handling-policy": "disable_non_proxied_udp",
		"disable-features":                "TranslateUI",
		"no-first-run":                    true,
		"no-default-browser-check":        true,
	}
}

func allocatorOptions(opts *Options) []chromedp.ExecAllocatorOption {
	flags := launchFlags(opts)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, name := range names {
		out = append(out, chromedp.Flag(name, flags[name]))
	}
	out = append(out,
		chromedp.UserDataDir(opts.ProfileDir),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	return out
}

// Session is the exclusive owner of one browser instance.
// It is driven by a single flow of control; only Close and State are safe to call concurrently.
type Session struct {
	opts *Options
	log  *zap.Logger

	lock        *flock.Flock
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

func withDefaults(opts *Options) *Options {
	d := DefaultOptions("")
	if opts == nil {
		return d
	}
	o := *opts
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.WindowWidth <= 0 {
		o.WindowWidth = d.WindowWidth
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = d.WindowHeight
	}
	if o.LandingURL == "" {
		o.LandingURL = d.LandingURL
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = d.OpTimeout
	}
	if o.VerifyWaitMax <= 0 {
		o.VerifyWaitMin, o.VerifyWaitMax = d.VerifyWaitMin, d.VerifyWaitMax
	}
	return &o
}

// Launch starts Chrome bound to opts.ProfileDir with the stealth switches applied.
// The profile directory is locked for the lifetime of the session.
func Launch(ctx context.Context, opts *Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = withDefaults(opts)
	if opts.ProfileDir == "" {
		return nil, fmt.Errorf("browser profile directory is empty")
	}

	profileDir, err := filepath.Abs(opts.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile directory: %w", err)
	}
	opts.ProfileDir = profileDir
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory %s: %w", profileDir, err)
	}

	lock := flock.New(profileDir + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrProfileLocked, profileDir)
	}

	s := &Session{
		opts: opts,
		log:  logger.Named("browser"),
		lock: lock,
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	s.allocCancel = allocCancel
	s.ctx, s.cancel = chromedp.NewContext(allocCtx,
		chromedp.WithLogf(s.log.Sugar().Debugf),
		chromedp.WithErrorf(s.log.Sugar().Debugf),
	)

	// The first Run allocates the browser and must not carry a timeout.
	if err := chromedp.Run(s.ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	err = s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriver).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to install automation mask: %w", err)
	}

	s.setState(StateLaunched)
	s.log.Info("browser launched",
		zap.String("profile_dir", profileDir),
		zap.Bool("headless", opts.Headless))
	return s, nil
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state != st {
		s.log.Debug("session state", zap.Stringer("from", s.state), zap.Stringer("to", st))
	}
	s.state = st
}

// Close tears the browser down and releases the profile lock. It is idempotent and never fails.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.ctx != nil {
			closeCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
			if err := chromedp.Cancel(closeCtx); err != nil {
				s.log.Debug("browser cancel failed", zap.Error(err))
			}
			cancel()
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
		if s.lock != nil {
			if err := s.lock.Unlock(); err != nil {
				s.log.Debug("profile unlock failed", zap.Error(err))
			}
		}

		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		s.log.Info("browser closed")
	})
}

// run executes actions against the browser tab, bounded by the operation timeout
// and cancelled when ctx is.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.State() == StateClosed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.OpTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

// Err reports a session-fatal condition: the browser exited or the session was closed.
func (s *Session) Err() error {
	if s.State() == StateClosed {
		return ErrClosed
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("browser session ended: %w", err)
	}
	return nil
}
