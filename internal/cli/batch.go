package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/palettesniffer/internal/archive"
	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/engine"
	"github.com/jmylchreest/palettesniffer/internal/image"
)

var (
	// Batch command flags
	batchConcurrency int
	batchNoExternal  bool
	batchJSON        bool
)

const (
	inputImage = "image"
	inputURL   = "url"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <input>...",
	Short: "Analyse many images and webpages concurrently",
	Long: `Analyse images, image directories and webpages concurrently through one
shared engine, then print a summary table and request metrics.

Inputs that are existing files, directories or have an image extension are
treated as images. Zip and compressed tar archives are read in memory and
each image inside is analysed. Everything else is analysed as a webpage.

Examples:
  palettesniffer batch wallpapers/ github.com example.com
  palettesniffer batch --concurrency 8 --json a.png b.jpg
  palettesniffer batch wallpapers.tar.xz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "inputs analysed at once")
	batchCmd.Flags().BoolVar(&batchNoExternal, "no-external", false, "skip rendering and stylesheet strategies")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print results as JSON lines instead of a table")
}

// batchResult is one row of batch output.
type batchResult struct {
	Input   string          `json:"input"`
	Type    string          `json:"type"`
	Source  string          `json:"source,omitempty"`
	Palette *colour.Palette `json:"palette,omitempty"`
	Elapsed time.Duration   `json:"elapsed"`
	Error   string          `json:"error,omitempty"`
}

// runBatch executes the batch command.
func runBatch(cmd *cobra.Command, args []string) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}

	var maxDim int
	var userAgent string
	e, logger, err := newEngine(cmd, func(cfg *config.Config) {
		if batchNoExternal {
			cfg.Resolver.External = false
		}
		maxDim = cfg.Extraction.MaxDimension
		userAgent = cfg.Resolver.UserAgent
	}, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]batchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(batchConcurrency, 1))
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = analyseInput(gctx, e, input, maxDim, userAgent)
			return nil
		})
	}
	_ = g.Wait()

	if err := printBatch(cmd, results); err != nil {
		return err
	}

	m := e.Metrics()
	logger.Info("batch complete", "inputs", len(inputs),
		"url_requests", m.Total, "successful", m.Successful, "failed", m.Failed,
		"average_response_time", m.AverageResponseTime)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// batchInput is an image path, a URL, or an image read from an archive.
type batchInput struct {
	Name string
	Data []byte
}

// expandInputs replaces directories and archives with the images they contain.
func expandInputs(args []string) ([]batchInput, error) {
	var inputs []batchInput
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			files, err := image.ScanDirectoryForImages(arg)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				inputs = append(inputs, batchInput{Name: f})
			}
		case err == nil && archive.IsArchive(arg):
			entries, err := archive.ReadFile(arg)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				inputs = append(inputs, batchInput{Name: arg + ":" + e.Name, Data: e.Data})
			}
		default:
			inputs = append(inputs, batchInput{Name: arg})
		}
	}
	return inputs, nil
}

// classifyInput reports whether input is an image or a webpage.
func classifyInput(input string) string {
	if image.IsImageFile(input) {
		return inputImage
	}
	if !image.IsRemote(input) {
		if _, err := os.Stat(input); err == nil {
			return inputImage
		}
	}
	return inputURL
}

func analyseInput(ctx context.Context, e *engine.Engine, input batchInput, maxDim int, userAgent string) batchResult {
	res := batchResult{Input: input.Name, Type: inputImage}
	if input.Data == nil {
		res.Type = classifyInput(input.Name)
	}
	start := time.Now()

	switch res.Type {
	case inputImage:
		var px *image.Pixels
		var err error
		if input.Data != nil {
			px, err = image.DecodePixels(input.Data, maxDim, false)
		} else {
			px, err = loadPixels(ctx, input.Name, maxDim, userAgent)
		}
		if err != nil {
			res.Error = err.Error()
			break
		}
		p, err := e.AnalyzeImage(ctx, px)
		if err != nil {
			res.Error = err.Error()
			break
		}
		res.Source = "image"
		res.Palette = p
	default:
		r, err := e.AnalyzeURL(ctx, input.Name)
		if err != nil {
			res.Error = err.Error()
			break
		}
		res.Source = r.Source
		res.Palette = r.Palette
	}
	res.Elapsed = time.Since(start)
	return res
}

func printBatch(cmd *cobra.Command, results []batchResult) error {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	if batchJSON {
		for _, r := range results {
			line, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to convert to JSON: %w", err)
			}
			fmt.Fprintln(out, string(line))
		}
		return nil
	}
	_, err := newBatchTable(results).WriteTo(out)
	return err
}

// newBatchTable lays results out with one row per input.
func newBatchTable(results []batchResult) *Table {
	table := NewTable([]string{"Input", "Type", "Source", "Dominant", "Colours", "Elapsed", "Error"})
	table.SetColumnMaxWidth(0, 40)
	table.SetColumnMaxWidth(6, 40)
	table.AlignRight(4)
	table.AlignRight(5)
	for _, r := range results {
		var dominant []string
		colours := ""
		if r.Palette != nil {
			for _, rec := range r.Palette.Dominant {
				dominant = append(dominant, rec.Hex)
			}
			colours = strconv.Itoa(r.Palette.Len())
		}
		table.AddRow([]string{
			r.Input,
			r.Type,
			r.Source,
			strings.Join(dominant, " "),
			colours,
			r.Elapsed.Round(time.Millisecond).String(),
			r.Error,
		})
	}
	return table
}
