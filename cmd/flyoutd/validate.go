package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arraypress/flyouts/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and panel manifests",
	Long: `Validate the config file and every panel manifest it references.

Checks:
  - The config file parses and passes validation
  - Every manifest parses, has a manager and panel ids
  - Every referenced callback resolves against the built-in store

Examples:
  flyoutd validate
  flyoutd validate --config /etc/flyouts/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	fmt.Printf("config %s: ok\n", cfgFile)

	manifests, err := config.LoadManifests(cfg.Panels)
	if err != nil {
		return fmt.Errorf("manifests invalid: %w", err)
	}

	fns := storeCallbacks(newMemStore())
	total := 0
	for _, m := range manifests {
		defs, err := m.Definitions(fns)
		if err != nil {
			return fmt.Errorf("manager %s: %w", m.Manager, err)
		}
		for local := range defs {
			fmt.Printf("panel %s_%s: ok\n", m.Manager, local)
			total++
		}
	}
	fmt.Printf("%d panels across %d manifests\n", total, len(manifests))
	return nil
}
