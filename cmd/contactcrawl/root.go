package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contactcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactcrawl",
		Short: "Crawl a website for contact details",
		Long: `contactcrawl crawls a website breadth-first from a seed URL and extracts
email addresses, phone numbers and Telegram profile links from every page.
Telegram profiles are resolved into name, avatar and bio.

Each crawl is bounded by a page budget (50 fetch attempts by default).
Results are printed and stored in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().Bool("mask-contacts", false, "Mask email addresses and phone numbers in logs")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
