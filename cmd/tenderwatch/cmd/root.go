package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tenderwatch/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "tenderwatch",
	Short: "TenderWatch: a procurement tender monitor",
	Long: `TenderWatch scrapes the public procurement tender listing, detects
tenders that have not been seen before and alerts them over WhatsApp and
email before recording them in the local history.

Commands:
  monitor  Scrape the listing and alert on new tenders
  sendall  Scrape the listing and alert on every listed tender
  export   Export the stored tender history as JSON or CSV
  search   Search the tender archive`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Credentials are conventionally kept in a .env next to the binary.
	_ = godotenv.Load()

	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/tenderwatch")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// TENDERWATCH_WHATSAPP_AUTH_TOKEN -> whatsapp.auth_token
	viper.SetEnvPrefix("TENDERWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("scraper.url", "TENDERWATCH_SCRAPER_URL")
	viper.BindEnv("scraper.control_label", "TENDERWATCH_SCRAPER_CONTROL_LABEL")
	viper.BindEnv("scraper.headless", "TENDERWATCH_SCRAPER_HEADLESS")
	viper.BindEnv("scraper.user_agent", "TENDERWATCH_SCRAPER_USER_AGENT")
	viper.BindEnv("store.path", "TENDERWATCH_STORE_PATH")
	viper.BindEnv("whatsapp.account_sid", "TENDERWATCH_WHATSAPP_ACCOUNT_SID", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("whatsapp.auth_token", "TENDERWATCH_WHATSAPP_AUTH_TOKEN", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("whatsapp.from", "TENDERWATCH_WHATSAPP_FROM", "TWILIO_WHATSAPP_FROM")
	viper.BindEnv("whatsapp.to", "TENDERWATCH_WHATSAPP_TO", "TWILIO_WHATSAPP_TO")
	viper.BindEnv("email.host", "TENDERWATCH_EMAIL_HOST")
	viper.BindEnv("email.port", "TENDERWATCH_EMAIL_PORT")
	viper.BindEnv("email.from", "TENDERWATCH_EMAIL_FROM")
	viper.BindEnv("email.password", "TENDERWATCH_EMAIL_PASSWORD")
	viper.BindEnv("email.to", "TENDERWATCH_EMAIL_TO")
	viper.BindEnv("archive.enabled", "TENDERWATCH_ARCHIVE_ENABLED")
	viper.BindEnv("archive.addresses", "TENDERWATCH_ARCHIVE_ADDRESSES")
	viper.BindEnv("archive.index", "TENDERWATCH_ARCHIVE_INDEX")
	viper.BindEnv("archive.username", "TENDERWATCH_ARCHIVE_USERNAME")
	viper.BindEnv("archive.password", "TENDERWATCH_ARCHIVE_PASSWORD")
	viper.BindEnv("snapshot.enabled", "TENDERWATCH_SNAPSHOT_ENABLED")
	viper.BindEnv("snapshot.endpoint", "TENDERWATCH_SNAPSHOT_ENDPOINT")
	viper.BindEnv("snapshot.bucket", "TENDERWATCH_SNAPSHOT_BUCKET")
	viper.BindEnv("snapshot.access_key_id", "TENDERWATCH_SNAPSHOT_ACCESS_KEY_ID")
	viper.BindEnv("snapshot.secret_access_key", "TENDERWATCH_SNAPSHOT_SECRET_ACCESS_KEY")
	viper.BindEnv("snapshot.use_ssl", "TENDERWATCH_SNAPSHOT_USE_SSL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("TENDERWATCH_ARCHIVE_ADDRESSES"); addrs != "" {
		cfg.Archive.Addresses = strings.Split(addrs, ",")
	}
}
