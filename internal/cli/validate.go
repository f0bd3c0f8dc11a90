package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
	"finitefield.org/iconpack-gallery/internal/gallery/filter"
	"finitefield.org/iconpack-gallery/internal/templates/helpers"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and template and summarise them",
		Long: `Loads every configured resource exactly as serve would and prints the
catalog shape and the packs, fonts and colors each version offers.
Exits non-zero when any resource fails to load or parse.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(ctx)
			if err != nil {
				return err
			}
			logger, err := a.newLogger(cfg, "stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			g, objects := newGallery(cfg, logger)
			defer func() { _ = objects.Close() }()
			if err := g.Load(ctx); err != nil {
				return err
			}
			cat, err := g.Catalog()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog: %s (%s)\n", cfg.Gallery.CatalogSource, cat.Shape)
			fmt.Fprintf(out, "template: %s\n", cfg.Gallery.TemplateSource)
			return writeVersionSummary(out, cat)
		},
	}
	return cmd
}

func writeVersionSummary(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range cat.VersionNames() {
		c := filter.NewController(cat)
		c.OnFilterChange(filter.DimensionVersion, name)
		opts := c.Options()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			name,
			helpers.Count(len(c.Items()), "pack", "packs"),
			helpers.Count(len(opts.Font), "font", "fonts"),
			helpers.Count(len(opts.Color), "color", "colors"),
		)
	}
	return tw.Flush()
}
