package browser

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLaunchFlags_Stealth(t *testing.T) {
	flags := launchFlags(&Options{Headless: false})

	assert.Equal(t, false, flags["headless"])
	assert.Equal(t, false, flags["enable-automation"])
	assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
	assert.Equal(t, true, flags["ignore-certificate-errors"])
	assert.Equal(t, true, flags["ignore-ssl-errors"])

	assert.Equal(t, true, launchFlags(&Options{Headless: true})["headless"])
}

func TestAllocatorOptions_AddsProfileAndExecPath(t *testing.T) {
	base := withDefaults(&Options{ProfileDir: "/tmp/profile"})
	withExec := withDefaults(&Options{ProfileDir: "/tmp/profile", ExecPath: "/usr/bin/chromium"})

	assert.Len(t, allocatorOptions(withExec), len(allocatorOptions(base))+1)
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(&Options{ProfileDir: "p", Headless: true})

	assert.Equal(t, "p", opts.ProfileDir)
	assert.True(t, opts.Headless)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
	assert.Equal(t, 1366, opts.WindowWidth)
	assert.Equal(t, 900, opts.WindowHeight)
	assert.Equal(t, "https://www.linkedin.com/", opts.LandingURL)
	assert.Equal(t, 60*time.Second, opts.OpTimeout)
	assert.Equal(t, 3*time.Second, opts.VerifyWaitMin)
	assert.Equal(t, 5*time.Second, opts.VerifyWaitMax)

	assert.NotNil(t, withDefaults(nil))
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateLaunched:      "launched",
		StateAwaitingLogin: "awaiting_login",
		StateVerified:      "verified",
		StateActive:        "active",
		StateClosed:        "closed",
		State(42):          "state(42)",
	}
	for st, want := range tests {
		assert.Equal(t, want, st.String())
	}
}

func TestLaunch_EmptyProfileDir(t *testing.T) {
	_, err := Launch(context.Background(), &Options{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile directory is empty")
}

func TestLaunch_ProfileLocked(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "user_data")

	holder := flock.New(dir + ".lock")
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer holder.Unlock()

	_, err = Launch(context.Background(), &Options{ProfileDir: dir}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileLocked))
}

func TestSession_ClosedOperations(t *testing.T) {
	s := &Session{opts: withDefaults(nil), log: zap.NewNop(), state: StateClosed}

	assert.ErrorIs(t, s.Navigate(context.Background(), "https://example.com"), ErrClosed)
	_, err := s.HTML(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Err(), ErrClosed)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "user_data")
	lock := flock.New(dir + ".lock")
	_, err := lock.TryLock()
	require.NoError(t, err)

	s := &Session{opts: withDefaults(nil), log: zap.NewNop(), lock: lock, state: StateActive}

	s.Close()
	s.Close()

	assert.Equal(t, StateClosed, s.State())

	// the profile lock is released
	again := flock.New(dir + ".lock")
	ok, err := again.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	_ = again.Unlock()
}

func TestSession_SetStateAfterCloseIsIgnored(t *testing.T) {
	s := &Session{log: zap.NewNop(), state: StateClosed}
	s.setState(StateVerified)
	assert.Equal(t, StateClosed, s.State())
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `"section:has(#about) button"`, jsString("section:has(#about) button"))
	assert.Equal(t, `"a[data-x=\"1\"]"`, jsString(`a[data-x="1"]`))
}
