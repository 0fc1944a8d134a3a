package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettesniffer/internal/config"
)

var (
	// URL command flags
	urlFormat      string
	urlShowPreview bool
	urlNoExternal  bool
)

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Extract a colour palette from a webpage",
	Long: `Extract a colour palette from a webpage.

Strategies are tried in order: headless and server-side rendering providers
(when enabled), stylesheet analysis and page metadata. When every strategy
fails a deterministic palette is derived from the domain, so a palette is
always returned.

Examples:
  # Analyse a site
  palettesniffer url github.com

  # Contrast details with swatches
  palettesniffer url --preview --format categorised https://example.com

  # Metadata only, no external services
  palettesniffer url --no-external example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

func init() {
	urlCmd.Flags().StringVarP(&urlFormat, "format", "f", formatCategorised, "output format (hex, rgb, json, categorised)")
	urlCmd.Flags().BoolVar(&urlShowPreview, "preview", false, "show colour previews in terminal")
	urlCmd.Flags().BoolVar(&urlNoExternal, "no-external", false, "skip rendering and stylesheet strategies")
}

// runURL executes the url command.
func runURL(cmd *cobra.Command, args []string) error {
	if !slices.Contains(validFormats, urlFormat) {
		return fmt.Errorf("unsupported format: %s", urlFormat)
	}

	e, logger, err := newEngine(cmd, func(cfg *config.Config) {
		if urlNoExternal {
			cfg.Resolver.External = false
		}
	}, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := e.AnalyzeURL(ctx, args[0])
	if err != nil {
		return err
	}
	logger.Info("analysis complete", "url", result.URL, "source", result.Source, "elapsed", result.Elapsed)

	output, err := formatPalette(result.Palette, urlFormat, previewEnabled(urlShowPreview, ""))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return writeOutput("", output)
}
