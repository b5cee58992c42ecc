package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reach/internal/config"
	"reach/internal/taxonomy"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the reach configuration",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath, taxonomyPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveConfigTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			var opts []config.SampleOption
			if strings.TrimSpace(taxonomyPath) != "" {
				expanded, err := config.ExpandPath(taxonomyPath)
				if err != nil {
					return fmt.Errorf("resolve taxonomy path: %w", err)
				}
				opts = append(opts, config.WithSampleTaxonomy(expanded))
			}
			if err := config.CreateSample(target, opts...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if len(opts) == 0 {
				fmt.Fprintln(out, "Point paths.taxonomy_file at your audience taxonomy before running `reach serve`.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&taxonomyPath, "taxonomy", "", "Taxonomy file to reference from the new configuration")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func resolveConfigTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// newConfigValidateCommand loads the file the other commands would use and
// parses the taxonomy it points at, so a bad snapshot shows up before serve.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and the taxonomy it references",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			r := newReport(cmd.OutOrStdout())
			r.section("Configuration")
			source := resolved
			if !exists {
				source += " (not found; defaults used)"
			}
			r.field("Config path", source)
			store := cfg.Store.Backend
			if cfg.Store.Backend == config.BackendSQLite {
				store += " at " + cfg.DatabasePath()
			}
			r.field("Store", store)
			r.field("Low capacity", "below "+formatCount(cfg.Selection.LowCapacityThreshold))
			r.field("API bind", cfg.API.Bind)

			tree, loadErr := taxonomy.Load(cfg.Paths.TaxonomyFile)
			if loadErr != nil {
				r.status("Taxonomy", statusError, fmt.Sprintf("%s (%v)", cfg.Paths.TaxonomyFile, loadErr))
				return fmt.Errorf("configuration invalid: taxonomy: %w", loadErr)
			}
			r.status("Taxonomy", statusOK, fmt.Sprintf("%s (%s)", cfg.Paths.TaxonomyFile, describeTree(tree)))
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}

func describeTree(tree *taxonomy.Tree) string {
	var subs, leaves int
	var audience int64
	for _, cat := range taxonomy.ListCategories(tree) {
		for _, sub := range taxonomy.ListSubCategories(tree, cat.Value) {
			subs++
			for _, leaf := range taxonomy.ListLeaves(tree, cat.Value, sub) {
				leaves++
				audience += taxonomy.AvailableAudience(tree, cat.Value, sub, leaf)
			}
		}
	}
	return fmt.Sprintf("%d categories, %d sub-categories, %d leaves, %s reachable",
		len(taxonomy.ListCategories(tree)), subs, leaves, formatCount(audience))
}
