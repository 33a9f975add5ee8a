package cmd

import (
	"github.com/spf13/cobra"
)

var sendallCmd = &cobra.Command{
	Use:   "sendall",
	Short: "Scrape the listing and alert on every listed tender",
	Long: `Scrape the tender listing and send an alert for every tender it
currently shows, whether or not it has been seen before. The history is still
merged and saved, so a later monitor run stays quiet.

Useful after a channel outage, when alerts for known tenders may have been
lost.

Examples:
  tenderwatch sendall
  tenderwatch sendall --city Karachi --no-email`,
	RunE: runSendAll,
}

func init() {
	rootCmd.AddCommand(sendallCmd)

	sendallCmd.Flags().StringVar(&monitorCity, "city", "", "city to filter the listing by")
	sendallCmd.Flags().BoolVar(&noWhatsApp, "no-whatsapp", false, "disable the WhatsApp channel")
	sendallCmd.Flags().BoolVar(&noEmail, "no-email", false, "disable the email channel")
	sendallCmd.Flags().BoolVar(&noHeadless, "no-headless", false, "run Chrome with a visible window")
	sendallCmd.Flags().StringVar(&monitorStore, "store", "", "override the tender history path")
}

func runSendAll(cmd *cobra.Command, args []string) error {
	return runCycle(true)
}
