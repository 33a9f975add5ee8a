package config

import "time"

// Config holds all application configuration.
type Config struct {
	Scraper  Scraper  `mapstructure:"scraper"`
	Store    Store    `mapstructure:"store"`
	WhatsApp WhatsApp `mapstructure:"whatsapp"`
	Email    Email    `mapstructure:"email"`
	Archive  Archive  `mapstructure:"archive"`
	Snapshot Snapshot `mapstructure:"snapshot"`
}

// Scraper holds listing-page scraping configuration.
type Scraper struct {
	URL          string        `mapstructure:"url"`
	ControlLabel string        `mapstructure:"control_label"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	Headless     bool          `mapstructure:"headless"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// Store holds tender-history store configuration.
type Store struct {
	Path string `mapstructure:"path"`
}

// WhatsApp holds Twilio WhatsApp channel credentials.
type WhatsApp struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
}

// Email holds SMTP channel settings.
type Email struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
	To       string `mapstructure:"to"`
}

// Archive holds optional Elasticsearch tender-archive configuration.
type Archive struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Snapshot holds optional S3/MinIO page-snapshot configuration.
type Snapshot struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Scraper: Scraper{
			URL:          "https://ppra.gov.pk/#/tenders/activetenders",
			ControlLabel: "City",
			Timeout:      30 * time.Second,
			SettleDelay:  2 * time.Second,
			Headless:     true,
		},
		Store: Store{
			Path: "data/tenders.json",
		},
		Email: Email{
			Port: 587,
		},
		Archive: Archive{
			Enabled:   false, // opt-in, requires a running Elasticsearch
			Addresses: []string{"http://localhost:9200"},
			Index:     "tenderwatch-tenders",
		},
		Snapshot: Snapshot{
			Enabled:  false, // opt-in, requires S3/MinIO credentials
			Endpoint: "localhost:9000",
			Bucket:   "tenderwatch",
		},
	}
}
