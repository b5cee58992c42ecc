package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reach/internal/api"
	"reach/internal/taxonomy"
)

func (c *commandContext) loadTaxonomy() (*taxonomy.Tree, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	tree, err := taxonomy.Load(cfg.Paths.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tree, nil
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List level-1 audience categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := ctx.loadTaxonomy()
			if err != nil {
				return err
			}
			options := taxonomy.ListCategories(tree)
			if jsonOut {
				return writeJSON(cmd, api.FromOptions(api.LevelCategories, nil, options))
			}
			tbl := newOptionTable([]string{"Value", "Label", "Sub-categories"}, 2)
			for _, opt := range options {
				tbl.add(opt.Value, opt.Label, fmt.Sprintf("%d", len(taxonomy.ListSubCategories(tree, opt.Value))))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newSubCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "subcategories <category>",
		Short: "List the sub-categories of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := ctx.loadTaxonomy()
			if err != nil {
				return err
			}
			category := args[0]
			options := taxonomy.SubCategoryOptions(tree, category)
			if jsonOut {
				return writeJSON(cmd, api.FromOptions(api.LevelSubCategories, []string{category}, options))
			}
			tbl := newOptionTable([]string{"Value", "Label", "Leaves", "Audience"}, 2, 3)
			for _, opt := range options {
				leaves := taxonomy.ListLeaves(tree, category, opt.Value)
				var audience int64
				for _, leaf := range leaves {
					audience += taxonomy.AvailableAudience(tree, category, opt.Value, leaf)
				}
				tbl.add(opt.Value, opt.Label, fmt.Sprintf("%d", len(leaves)), formatCount(audience))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newLeavesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "leaves <category> <sub-category>",
		Short: "List the leaf segments of a sub-category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := ctx.loadTaxonomy()
			if err != nil {
				return err
			}
			category, sub := args[0], args[1]
			options := taxonomy.LeafOptions(tree, category, sub)
			if jsonOut {
				return writeJSON(cmd, api.FromOptions(api.LevelLeaves, []string{category, sub}, options))
			}
			tbl := newOptionTable([]string{"Value", "Label", "Audience", "Tags"}, 2)
			var total int64
			for _, opt := range options {
				audience := taxonomy.AvailableAudience(tree, category, sub, opt.Value)
				total += audience
				tbl.add(opt.Value, opt.Label, formatCount(audience), strings.Join(taxonomy.LeafTags(tree, category, sub, opt.Value), ", "))
			}
			tbl.total("", "Total", formatCount(total))
			fmt.Fprintln(cmd.OutOrStdout(), tbl.render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}
