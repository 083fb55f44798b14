// Package main provides the entry point for the lodprobe CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lodprobe.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lodprobe",
		Short: "Estimate the dominant referenced host of linked-data datasets",
		Long: `lodprobe samples paginated triple-fragment endpoints and counts which
external hosts their triples reference. For each dataset it estimates the
most referenced host, then merges datasets sharing a dominant host into a
per-provider summary.

Datasets come from a SPARQL catalog (--catalog) or are given directly
(--dataset). Only a configurable fraction of each dataset's pages is
fetched, so large datasets stay cheap to probe.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewProbeCmd())
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
