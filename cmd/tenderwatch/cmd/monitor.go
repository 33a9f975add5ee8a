package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tenderwatch/internal/archive"
	"tenderwatch/internal/browser"
	"tenderwatch/internal/config"
	"tenderwatch/internal/extract"
	"tenderwatch/internal/filter"
	"tenderwatch/internal/monitor"
	"tenderwatch/internal/notify"
	"tenderwatch/internal/snapshot"
)

var (
	monitorCity  string
	noWhatsApp   bool
	noEmail      bool
	noHeadless   bool
	monitorStore string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Scrape the listing and alert on new tenders",
	Long: `Scrape the tender listing, compare it against the stored history and
send an alert for every tender that has not been seen before. Alerts go out
before the history is written so a failed save never swallows a new tender.

Examples:
  # Full run with the configured channels
  tenderwatch monitor

  # Narrow the listing to one city
  tenderwatch monitor --city Lahore

  # Dry run without alerts
  tenderwatch monitor --no-whatsapp --no-email

  # Watch the browser while debugging selectors
  tenderwatch monitor --no-headless --verbose`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVar(&monitorCity, "city", "", "city to filter the listing by")
	monitorCmd.Flags().BoolVar(&noWhatsApp, "no-whatsapp", false, "disable the WhatsApp channel")
	monitorCmd.Flags().BoolVar(&noEmail, "no-email", false, "disable the email channel")
	monitorCmd.Flags().BoolVar(&noHeadless, "no-headless", false, "run Chrome with a visible window")
	monitorCmd.Flags().StringVar(&monitorStore, "store", "", "override the tender history path")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	return runCycle(false)
}

func runCycle(alertAll bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if monitorStore != "" {
		cfg.Store.Path = monitorStore
	}

	session := browser.NewSession(ctx, browser.Config{
		Headless:    cfg.Scraper.Headless && !noHeadless,
		Timeout:     cfg.Scraper.Timeout,
		SettleDelay: cfg.Scraper.SettleDelay,
		UserAgent:   cfg.Scraper.UserAgent,
	})
	defer session.Close()

	deps := monitor.Deps{
		Browser: session,
		Resolver: filter.New(filter.Config{
			ControlLabel: cfg.Scraper.ControlLabel,
			Timeout:      cfg.Scraper.Timeout,
		}),
		Extractor: extract.New(),
		Channels:  buildChannels(cfg),
		Snapshot:  buildSnapshot(ctx, cfg),
	}
	// Assign only a live client: a typed nil in the interface field would
	// defeat the monitor's nil check.
	if a := buildArchive(ctx, cfg); a != nil {
		deps.Archive = a
	}

	m := monitor.New(
		monitor.Config{
			URL:       cfg.Scraper.URL,
			City:      monitorCity,
			StorePath: cfg.Store.Path,
		},
		deps,
	)

	var res *monitor.Result
	var err error
	if alertAll {
		res, err = m.SendAll(ctx)
	} else {
		res, err = m.Run(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Scraped %d tenders, %d new\n", len(res.Scraped), len(res.New))
	if res.Alerted > 0 || res.AlertFailures > 0 {
		fmt.Printf("Alerts: %d sent, %d failed\n", res.Alerted, res.AlertFailures)
	}
	return nil
}

// buildChannels creates a channel for each configured, enabled transport.
// Misconfigured channels are skipped with a warning rather than failing the
// run: the history update is more valuable than any one channel.
func buildChannels(cfg config.Config) []notify.Channel {
	var channels []notify.Channel

	if !noWhatsApp && cfg.WhatsApp.To != "" {
		wa, err := notify.NewWhatsApp(notify.WhatsAppConfig{
			AccountSID: cfg.WhatsApp.AccountSID,
			AuthToken:  cfg.WhatsApp.AuthToken,
			From:       cfg.WhatsApp.From,
		})
		if err != nil {
			slog.Warn("WhatsApp channel disabled", "error", err)
		} else {
			channels = append(channels, notify.Channel{Name: "whatsapp", Recipient: cfg.WhatsApp.To, Notifier: wa})
		}
	}

	if !noEmail && cfg.Email.To != "" {
		em, err := notify.NewEmail(notify.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			From:     cfg.Email.From,
			Password: cfg.Email.Password,
		})
		if err != nil {
			slog.Warn("email channel disabled", "error", err)
		} else {
			channels = append(channels, notify.Channel{Name: "email", Recipient: cfg.Email.To, Notifier: em})
		}
	}

	if len(channels) == 0 {
		slog.Warn("no alert channels configured, running in record-only mode")
	}
	return channels
}

func buildArchive(ctx context.Context, cfg config.Config) *archive.Client {
	if !cfg.Archive.Enabled {
		return nil
	}
	client, err := archive.New(archive.Config{
		Addresses: cfg.Archive.Addresses,
		Index:     cfg.Archive.Index,
		Username:  cfg.Archive.Username,
		Password:  cfg.Archive.Password,
	})
	if err != nil {
		slog.Warn("tender archive disabled", "error", err)
		return nil
	}
	if err := client.CreateIndex(ctx); err != nil {
		slog.Warn("tender archive disabled", "error", err)
		return nil
	}
	return client
}

func buildSnapshot(ctx context.Context, cfg config.Config) *snapshot.Client {
	if !cfg.Snapshot.Enabled {
		return nil
	}
	client, err := snapshot.New(snapshot.Config{
		Endpoint:        cfg.Snapshot.Endpoint,
		Bucket:          cfg.Snapshot.Bucket,
		AccessKeyID:     cfg.Snapshot.AccessKeyID,
		SecretAccessKey: cfg.Snapshot.SecretAccessKey,
		UseSSL:          cfg.Snapshot.UseSSL,
	})
	if err != nil {
		slog.Warn("page snapshots disabled", "error", err)
		return nil
	}
	if err := client.EnsureBucket(ctx); err != nil {
		slog.Warn("page snapshots disabled", "error", err)
		return nil
	}
	return client
}
