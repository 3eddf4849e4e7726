package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/lead-harvester/internal/humanize"
)

// Navigate loads url in the session's tab and waits for the load event.
// The first navigation after verification moves the session to Active.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.Debug("navigating", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if s.State() == StateVerified {
		s.setState(StateActive)
	}
	return nil
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// ScrollBy scrolls the window vertically by dy pixels.
func (s *Session) ScrollBy(ctx context.Context, dy int) error {
	return s.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy), nil))
}

// ScrollIntoView centers the first element matching selector in the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function(sel) {
	const el = document.querySelector(sel);
	if (!el) { return false; }
	el.scrollIntoView({behavior: 'smooth', block: 'center'});
	return true;
})(%s)`, jsString(selector))

	var found bool
	if err := s.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return fmt.Errorf("failed to scroll %s into view: %w", selector, err)
	}
	if !found {
		return fmt.Errorf("element %s not found", selector)
	}
	return nil
}

// ElementState reports whether the first element matching selector is enabled and
// visible, and the viewport coordinates of its center.
func (s *Session) ElementState(ctx context.Context, selector string) (humanize.ElementState, error) {
	script := fmt.Sprintf(`(function(sel) {
	const el = document.querySelector(sel);
	if (!el) { return {found: false, enabled: false, visible: false, x: 0, y: 0}; }
	const r = el.getBoundingClientRect();
	const st = window.getComputedStyle(el);
	const visible = r.width > 0 && r.height > 0 &&
		st.visibility !== 'hidden' && st.display !== 'none' &&
		r.bottom > 0 && r.top < window.innerHeight;
	return {
		found: true,
		enabled: !el.disabled && el.getAttribute('aria-disabled') !== 'true',
		visible: visible,
		x: r.left + r.width / 2,
		y: r.top + r.height / 2
	};
})(%s)`, jsString(selector))

	var state humanize.ElementState
	if err := s.run(ctx, chromedp.Evaluate(script, &state)); err != nil {
		return humanize.ElementState{}, fmt.Errorf("failed to inspect %s: %w", selector, err)
	}
	return state, nil
}

// MoveMouse moves the pointer to viewport coordinates.
func (s *Session) MoveMouse(ctx context.Context, x, y float64) error {
	return s.run(ctx, chromedp.MouseEvent(input.MouseMoved, x, y))
}

// Click presses and releases the left button at viewport coordinates.
func (s *Session) Click(ctx context.Context, x, y float64) error {
	return s.run(ctx, chromedp.MouseClickXY(x, y))
}

// Screenshot captures the visible viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// HTML returns the document's rendered markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page markup: %w", err)
	}
	return html, nil
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
