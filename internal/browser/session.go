// Package browser owns the headless-Chrome session used to render the
// listing page. The page is a JavaScript single-page app; plain HTTP fetches
// return an empty shell, so everything goes through chromedp.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"tenderwatch/internal/filter"
)

// Config holds browser session configuration.
type Config struct {
	Headless     bool
	Timeout      time.Duration // bound for navigation and element waits
	ProbeTimeout time.Duration // bound for existence/visibility probes
	SettleDelay  time.Duration // post-load pause for late JS rendering
	UserAgent    string
}

// Session is one Chrome instance bound to one page. It implements
// filter.Page so the filter resolver can drive the live DOM.
type Session struct {
	cfg         Config
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

var _ filter.Page = (*Session)(nil)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewSession starts a Chrome instance. The caller must Close the session on
// every exit path; Close is safe to call more than once.
func NewSession(ctx context.Context, cfg Config) *Session {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 2 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	return &Session{
		cfg:         cfg,
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}
}

// Open navigates to url and blocks until the document body is ready, plus a
// settle delay for the app's own rendering. This is where the Chrome process
// actually launches; a failure here means the session is unusable.
func (s *Session) Open(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	slog.Debug("opening page", "url", url, "headless", s.cfg.Headless)
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
	)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Close shuts the browser down. Safe on every exit path, including after a
// failed Open.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// HTML returns the full rendered document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.bounded(ctx, s.cfg.Timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Visible reports whether a visible element matches the XPath query. Probes
// are short: not-found is an expected answer during strategy fallback, not a
// condition to wait out.
func (s *Session) Visible(ctx context.Context, query string) bool {
	runCtx, cancel := s.bounded(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.WaitVisible(query, chromedp.BySearch)) == nil
}

// Attr returns the named attribute of the first match.
func (s *Session) Attr(ctx context.Context, query, name string) (string, bool) {
	runCtx, cancel := s.bounded(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	var value string
	var ok bool
	err := chromedp.Run(runCtx, chromedp.AttributeValue(query, name, &value, &ok, chromedp.BySearch))
	if err != nil {
		return "", false
	}
	return value, ok
}

// ScrollIntoView scrolls the first match into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, query string) error {
	runCtx, cancel := s.bounded(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.ScrollIntoView(query, chromedp.BySearch))
}

// Click clicks the first match.
func (s *Session) Click(ctx context.Context, query string) error {
	runCtx, cancel := s.bounded(ctx, s.cfg.Timeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.Click(query, chromedp.BySearch))
}

// SendKeys types into the first match.
func (s *Session) SendKeys(ctx context.Context, query, keys string) error {
	runCtx, cancel := s.bounded(ctx, s.cfg.Timeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.SendKeys(query, keys, chromedp.BySearch))
}

// WaitVisible blocks until a visible element matches the query or the
// timeout expires. Expiry surfaces as context.DeadlineExceeded, which callers
// treat as a timeout distinct from not-found.
func (s *Session) WaitVisible(ctx context.Context, query string, timeout time.Duration) error {
	runCtx, cancel := s.bounded(ctx, timeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.WaitVisible(query, chromedp.BySearch))
}

// bounded derives a run context that honors both the caller's cancellation
// and the browser context's lifetime.
func (s *Session) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
