package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/docload"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/driver"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/eval"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/history"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/jsonvalidate"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/meta"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/ruleset"
)

var (
	outputFormat string
	relativeBase string
)

var validateCmd = &cobra.Command{
	Use:   "validate [target] [schema]",
	Short: "Validate a directory tree against a DirSchema rule document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath, schemaPath := args[0], args[1]

		raw, err := docload.ReadFile(schemaPath)
		if err != nil {
			return err
		}

		conv, err := meta.New(cfg.MetaConvention())
		if err != nil {
			return fmt.Errorf("metadata convention: %w", err)
		}

		localBase := cfg.LocalBaseDir
		if localBase == "" {
			localBase = filepath.Dir(schemaPath)
		}
		relPrefix := relativeBase
		if relPrefix == "" {
			relPrefix = cfg.RelativePrefix
		}
		resolver := &resolve.Resolver{
			LocalBaseDir:   localBase,
			WorkingDir:     targetPath,
			RelativePrefix: relPrefix,
		}

		root, warnings, err := ruleset.ParseDocumentWithRefs(raw, resolver, docload.Load)
		if err != nil {
			return fmt.Errorf("parse schema: %w", err)
		}
		for _, w := range warnings {
			log.Warn().Str("location", w.Location).Msg(w.Message)
		}

		ad, err := adapter.ForPath(targetPath)
		if err != nil {
			return fmt.Errorf("select adapter: %w", err)
		}
		if c, ok := ad.(io.Closer); ok {
			defer func() { _ = c.Close() }()
		}

		evalCfg := &eval.Config{
			Adapter:    ad,
			Meta:       conv,
			Resolver:   resolver,
			Validator:  jsonvalidate.New(),
			LoadSchema: docload.Load,
		}

		d := driver.New(ad, conv, evalCfg, root)
		report, err := d.Run()
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		var out string
		if outputFormat == "json" {
			out, err = driver.FormatJSON(report)
		} else {
			out, err = driver.FormatYAML(report)
		}
		if err != nil {
			return err
		}

		recordHistory(targetPath, schemaPath, len(report) == 0, len(report), out)

		if len(report) == 0 {
			log.Info().Str("target", targetPath).Msg("no violations found")
			return nil
		}
		fmt.Println(out)
		return fmt.Errorf("validation failed: %d path(s) violated the schema", len(report))
	},
}

func init() {
	validateCmd.Flags().StringVar(&outputFormat, "format", "yaml", "report format: yaml or json")
	validateCmd.Flags().StringVar(&relativeBase, "relative-prefix", "", "URI scheme to use for bare relative schema references (e.g. local://)")
	rootCmd.AddCommand(validateCmd)
}

// recordHistory persists a run if history is configured; failures here
// are logged, not fatal, since history is an optional convenience.
func recordHistory(target, schemaPath string, passed bool, violations int, report string) {
	if cfg.HistoryDB == "" {
		return
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Warn().Err(err).Msg("could not open history database")
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.Record(target, schemaPath, passed, violations, report); err != nil {
		log.Warn().Err(err).Msg("could not record validation run")
	}
}
