// Package cmd implements the dirschema CLI, grounded on
// avular-robotics-avular-packages' internal/cli/root.go cobra+viper
// wiring (the teacher's own cmd package only used cobra directly, with
// no config layer, so the root-command/config/logging split is adopted
// from the rest of the example pack).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/config"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/obs"
)

var (
	cfgFile string
	verbose int
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dirschema",
	Short: "Validate tree-shaped containers against declarative path/schema rules",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if verbose > 0 {
			obs.Setup(verbose)
		} else {
			obs.SetupLevel(cfg.LogLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (dirschema.{yaml,json,hcl})")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
}

// Execute runs the root command, exiting with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
