// Package filter locates and operates the city-filter dropdown on the
// listing page.
//
// The page gives the control no id, no name and no label association, so the
// resolver runs a chain of heuristic locate strategies in a fixed order and
// takes the first hit. Failing to apply the filter is never fatal: the caller
// falls back to the unfiltered listing.
package filter

import (
	"context"
	"log/slog"
	"time"
)

// Page is the DOM surface the resolver needs from a live browser session.
// Queries are XPath expressions.
type Page interface {
	// Visible reports whether a visible element matches the query.
	Visible(ctx context.Context, query string) bool
	// Attr returns the value of the named attribute on the first match.
	// ok is false when there is no match or no such attribute.
	Attr(ctx context.Context, query, name string) (value string, ok bool)
	ScrollIntoView(ctx context.Context, query string) error
	Click(ctx context.Context, query string) error
	SendKeys(ctx context.Context, query, keys string) error
	// WaitVisible blocks until a visible element matches the query or the
	// timeout expires.
	WaitVisible(ctx context.Context, query string, timeout time.Duration) error
}

// Config holds resolver tuning. The control label is configurable because it
// is the one selector input that has already changed once on the live page.
type Config struct {
	ControlLabel string        // visible text of the filter label, e.g. "City"
	Timeout      time.Duration // bound for blocking waits
	SettleDelay  time.Duration // pause after scroll/click before re-querying
	OpenDelay    time.Duration // pause for the dropdown open animation
}

// Resolver applies the city filter through ordered fallback strategies.
type Resolver struct {
	cfg Config
}

// New creates a Resolver. Zero-value durations get working defaults.
func New(cfg Config) *Resolver {
	if cfg.ControlLabel == "" {
		cfg.ControlLabel = "City"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	if cfg.OpenDelay == 0 {
		cfg.OpenDelay = 1500 * time.Millisecond
	}
	return &Resolver{cfg: cfg}
}

// Apply narrows the listing to the given city: locate the dropdown opener,
// open it, pick the city option, click the search trigger and wait for the
// results container. Returns false when any required element cannot be found
// after all strategies, or a wait times out. Each strategy is tried at most
// once per invocation.
func (r *Resolver) Apply(ctx context.Context, page Page, city string) bool {
	control, ok := r.locateControl(ctx, page)
	if !ok {
		slog.Warn("city filter control not found, all strategies exhausted", "label", r.cfg.ControlLabel)
		return false
	}
	slog.Debug("located city filter control", "query", control)

	if err := page.ScrollIntoView(ctx, control); err != nil {
		slog.Warn("could not scroll filter control into view", "error", err)
		return false
	}
	r.settle(ctx, r.cfg.SettleDelay)

	if err := page.Click(ctx, control); err != nil {
		slog.Warn("could not open city filter dropdown", "error", err)
		return false
	}
	r.settle(ctx, r.cfg.OpenDelay)

	option, ok := r.locateOption(ctx, page, city)
	if !ok {
		// Searchable dropdowns only show options once filtered: type the
		// city name into the control and look again.
		slog.Debug("option not visible, trying type-ahead", "city", city)
		if err := page.SendKeys(ctx, control, city); err == nil {
			r.settle(ctx, r.cfg.OpenDelay)
			option, ok = r.findVisibleOption(ctx, page, city)
		}
	}
	if !ok {
		slog.Warn("city option not found in dropdown", "city", city)
		return false
	}

	if err := page.ScrollIntoView(ctx, option); err == nil {
		r.settle(ctx, r.cfg.SettleDelay)
	}
	if err := page.Click(ctx, option); err != nil {
		slog.Warn("could not select city option", "city", city, "error", err)
		return false
	}
	r.settle(ctx, r.cfg.SettleDelay)

	if err := page.WaitVisible(ctx, searchTriggerXPath, r.cfg.Timeout); err != nil {
		slog.Warn("search trigger did not appear", "error", err)
		return false
	}
	if err := page.Click(ctx, searchTriggerXPath); err != nil {
		slog.Warn("could not click search trigger", "error", err)
		return false
	}

	if err := page.WaitVisible(ctx, resultsXPath, r.cfg.Timeout); err != nil {
		slog.Warn("results container did not appear after filtering", "error", err)
		return false
	}

	slog.Info("city filter applied", "city", city)
	return true
}

// locateControl runs the locate strategies in order; first success wins.
func (r *Resolver) locateControl(ctx context.Context, page Page) (string, bool) {
	strategies := []locateFunc{
		r.locateByLabelContainer,
		r.locateByDocumentOrder,
		r.locateByGenericSelectors,
	}

	for i, locate := range strategies {
		if query, ok := locate(ctx, page); ok {
			slog.Debug("filter control located", "strategy", i+1)
			return query, true
		}
	}
	return "", false
}

// locateOption waits for the city option. One timeout budget covers the
// whole search, split evenly across the patterns so a never-matching early
// pattern cannot starve the later ones or the type-ahead fallback.
func (r *Resolver) locateOption(ctx context.Context, page Page, city string) (string, bool) {
	patterns := optionXPaths(city)
	wait := r.cfg.Timeout / time.Duration(len(patterns))
	for _, query := range patterns {
		if err := page.WaitVisible(ctx, query, wait); err == nil {
			return query, true
		}
	}
	return "", false
}

// findVisibleOption re-checks the option patterns without waiting, for the
// post-type-ahead pass.
func (r *Resolver) findVisibleOption(ctx context.Context, page Page, city string) (string, bool) {
	for _, query := range optionXPaths(city) {
		if page.Visible(ctx, query) {
			return query, true
		}
	}
	return "", false
}

func (r *Resolver) settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
