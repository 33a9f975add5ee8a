// Package monitor runs one scrape-compare-alert-persist cycle against the
// tender listing page.
package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"tenderwatch/internal/archive"
	"tenderwatch/internal/extract"
	"tenderwatch/internal/filter"
	"tenderwatch/internal/history"
	"tenderwatch/internal/notify"
	"tenderwatch/internal/snapshot"
	"tenderwatch/internal/store"
	"tenderwatch/pkg/models"
)

// Browser is the live page surface the monitor drives. It is the browser
// session plus the DOM operations the filter resolver needs.
type Browser interface {
	filter.Page

	Open(url string) error
	Close()
	HTML(ctx context.Context) (string, error)
}

// Archiver is the optional tender archive behind the search command.
type Archiver interface {
	IndexTender(ctx context.Context, t models.Tender) error
	Refresh(ctx context.Context) error
}

var _ Archiver = (*archive.Client)(nil)

// Config holds the per-run settings.
type Config struct {
	URL       string
	City      string // empty means no city filter
	StorePath string
}

// Deps carries the monitor's collaborators. Archive and Snapshot are
// optional; a nil client disables that step.
type Deps struct {
	Browser   Browser
	Resolver  *filter.Resolver
	Extractor *extract.Extractor
	Channels  []notify.Channel
	Archive   Archiver
	Snapshot  *snapshot.Client
}

// Result summarizes one completed run.
type Result struct {
	Scraped       []models.Tender
	New           []models.Tender
	Alerted       int
	AlertFailures int
	Persisted     bool
}

// Monitor executes monitoring runs.
type Monitor struct {
	cfg  Config
	deps Deps
}

// New creates a Monitor.
func New(cfg Config, deps Deps) *Monitor {
	return &Monitor{cfg: cfg, deps: deps}
}

// Run scrapes the listing, merges it against the stored history, alerts on
// the new tenders and then persists the merged history. Alerts go out before
// the save so a failed save is retried with alerts already delivered rather
// than silently dropped.
func (m *Monitor) Run(ctx context.Context) (*Result, error) {
	return m.run(ctx, false)
}

// SendAll is Run except every scraped tender is alerted, not just the new
// ones. Used to re-broadcast the current listing after a channel outage.
func (m *Monitor) SendAll(ctx context.Context) (*Result, error) {
	return m.run(ctx, true)
}

func (m *Monitor) run(ctx context.Context, alertAll bool) (*Result, error) {
	if err := m.deps.Browser.Open(m.cfg.URL); err != nil {
		return nil, fmt.Errorf("failed to open listing page: %w", err)
	}
	defer m.deps.Browser.Close()

	if m.cfg.City != "" {
		if !m.deps.Resolver.Apply(ctx, m.deps.Browser, m.cfg.City) {
			slog.Warn("city filter not applied, scraping unfiltered listing", "city", m.cfg.City)
		}
	}

	pageHTML, err := m.deps.Browser.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}

	if m.deps.Snapshot != nil {
		if key, err := m.deps.Snapshot.Put(ctx, m.cfg.URL, pageHTML); err != nil {
			slog.Warn("page snapshot failed", "error", err)
		} else {
			slog.Debug("page snapshot stored", "bucket", m.deps.Snapshot.Bucket(), "key", key)
		}
	}

	scraped, err := m.deps.Extractor.Extract(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tenders: %w", err)
	}
	slog.Info("listing scraped", "tenders", len(scraped))

	existing := store.Load(m.cfg.StorePath)
	merged := history.Merge(existing, scraped)
	slog.Info("history merged", "known", len(existing), "new", merged.AddedCount())

	res := &Result{Scraped: scraped, New: merged.Added}

	toAlert := merged.Added
	if alertAll {
		toAlert = scraped
	}
	res.Alerted, res.AlertFailures = m.alert(ctx, toAlert)

	if m.deps.Archive != nil && len(merged.Added) > 0 {
		for _, t := range merged.Added {
			if err := m.deps.Archive.IndexTender(ctx, t); err != nil {
				slog.Warn("tender archive failed", "tender_number", t.Number, "error", err)
			}
		}
		// Refresh so a search right after the run sees this batch.
		if err := m.deps.Archive.Refresh(ctx); err != nil {
			slog.Warn("archive refresh failed", "error", err)
		}
	}

	if err := store.Save(m.cfg.StorePath, merged.Merged); err != nil {
		return res, fmt.Errorf("failed to persist history: %w", err)
	}
	res.Persisted = true
	return res, nil
}

func (m *Monitor) alert(ctx context.Context, tenders []models.Tender) (sent, failed int) {
	for _, t := range tenders {
		for _, ch := range m.deps.Channels {
			out := ch.Notifier.Send(ctx, ch.Recipient, t)
			if out.OK {
				sent++
				slog.Info("alert sent", "channel", ch.Name, "tender_number", t.Number, "provider_id", out.ProviderID)
			} else {
				failed++
				slog.Warn("alert failed", "channel", ch.Name, "tender_number", t.Number, "error", out.Err)
			}
		}
	}
	return sent, failed
}
