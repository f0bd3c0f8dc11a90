package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/iconpack-gallery/internal/gallery/filter"
)

func newRenderCmd(a *app) *cobra.Command {
	var sel filter.Selection

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the gallery markup for a selection",
		Long: `Loads the gallery and prints the rendered item markup for the given
selection. Values a version does not offer are reset to "all" and reported
on stderr.`,
		Example: `  # Transparent packs of the newest version
  gallery render --bg 0

  # Solid packs of 6.5.0
  gallery render --version 6.5.0 --font solid`,
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

			view, err := g.Resolve(ctx, selectionQuery(sel), nil)
			if err != nil {
				return err
			}
			for _, reset := range view.Resets {
				logger.Warn("selection reset",
					zap.String("dimension", string(reset.Dimension)),
					zap.String("value", reset.Value),
					zap.String("version", view.Selection.Version),
				)
			}

			out := cmd.OutOrStdout()
			if _, err := io.WriteString(out, view.Markup); err != nil {
				return err
			}
			if view.Markup != "" && !strings.HasSuffix(view.Markup, "\n") {
				_, err = io.WriteString(out, "\n")
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sel.Version, "version", "", "catalog version (defaults to the first)")
	flags.StringVar(&sel.Font, "font", filter.All, "font id")
	flags.StringVar(&sel.Color, "color", filter.All, "color id")
	flags.StringVar(&sel.Background, "bg", filter.All, `background: 1 with, 0 without`)

	return cmd
}

func selectionQuery(sel filter.Selection) url.Values {
	query := url.Values{}
	for _, d := range filter.Dimensions {
		if value := strings.TrimSpace(sel.Get(d)); value != "" {
			query.Set(string(d), value)
		}
	}
	return query
}
