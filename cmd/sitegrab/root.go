// Package main provides the entry point for the sitegrab CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitegrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegrab",
		Short: "Website crawler and image collector",
		Long: `Sitegrab crawls a website starting from one or more seed URLs.
It follows same-domain links in breadth-first order, records every page it
visits, and collects the images those pages reference.

Pages are reported with their title, status, and discovered links. Collected
images carry dimensions, format, and optional EXIF metadata, each labeled by
the page and location it was found at (e.g. "home/header").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewGrabCmd())
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
