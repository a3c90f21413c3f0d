package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flyoutd",
	Short: "Standalone server for declarative flyout panels",
	Long: `Flyoutd serves flyout panels declared in YAML manifests over a
JSON API: load, save, delete, action, and search.

It is the standalone companion to the flyouts library. Applications
that embed the library wire their own callbacks; flyoutd binds
manifests to a built-in in-memory record store, which makes it useful
for prototyping panel layouts and driving front-end development.

Quick start:
  flyoutd serve     # Start the panel server
  flyoutd validate  # Validate config and panel manifests`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "flyouts.yaml", "config file path")
}
