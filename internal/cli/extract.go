package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/image"
	httputil "github.com/jmylchreest/palettesniffer/internal/util/http"
)

var (
	// Extract command flags
	extractColours     int
	extractAlgorithm   string
	extractFormat      string
	extractOutput      string
	extractShowPreview bool
	extractSeed        int64
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract a colour palette from an image",
	Long: `Extract a colour palette from an image file or image URL.

The image is scaled so its longest edge fits the configured maximum, sampled,
clustered and split into dominant, secondary and accent colours.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract a palette from a wallpaper
  palettesniffer extract wallpaper.jpg

  # Show swatches and contrast details
  palettesniffer extract --preview --format categorised wallpaper.png

  # Cluster into 16 colours and output JSON
  palettesniffer extract -c 16 -f json wallpaper.jpg

  # Reproducible output
  palettesniffer extract --seed 42 wallpaper.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVarP(&extractColours, "colours", "c", 0, "number of clusters (default from config)")
	extractCmd.Flags().StringVarP(&extractAlgorithm, "algorithm", "a", "", "extraction algorithm (kmeans, prominent)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatHex, "output format (hex, rgb, json, categorised)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().BoolVar(&extractShowPreview, "preview", false, "show colour previews in terminal")
	extractCmd.Flags().Int64Var(&extractSeed, "seed", 0, "seed for deterministic clustering (0 = random)")
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	if err := image.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	if !slices.Contains(validFormats, extractFormat) {
		return fmt.Errorf("unsupported format: %s", extractFormat)
	}

	var maxDim int
	var userAgent string
	e, logger, err := newEngine(cmd, func(cfg *config.Config) {
		if extractColours > 0 {
			cfg.Extraction.K = extractColours
		}
		if extractAlgorithm != "" {
			cfg.Extraction.Algorithm = extractAlgorithm
		}
		maxDim = cfg.Extraction.MaxDimension
		userAgent = cfg.Resolver.UserAgent
	}, extractSeed)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug("loading image", "path", imagePath)
	px, err := loadPixels(ctx, imagePath, maxDim, userAgent)
	if err != nil {
		return err
	}
	logger.Debug("image loaded", "width", px.Width, "height", px.Height)

	palette, err := e.AnalyzeImage(ctx, px)
	if err != nil {
		return err
	}
	logger.Debug("palette extracted", "colours", palette.Len())

	output, err := formatPalette(palette, extractFormat, previewEnabled(extractShowPreview, extractOutput))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if err := writeOutput(extractOutput, output); err != nil {
		return err
	}
	if extractOutput != "" {
		logger.Info("wrote palette", "path", extractOutput)
	}
	return nil
}

// loadPixels reads a local or remote image and scales it down to maxDim.
func loadPixels(ctx context.Context, path string, maxDim int, userAgent string) (*image.Pixels, error) {
	headers := map[string]string{}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	loader := image.NewSmartLoader(httputil.FetchOptions{Headers: headers})
	img, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return image.ToPixels(img, maxDim, false), nil
}
