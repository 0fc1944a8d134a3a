// Package cli provides the command-line interface for palettesniffer.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/engine"
	"github.com/jmylchreest/palettesniffer/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "palettesniffer",
	Short: "Extract colour palettes from images and websites",
	Long: `palettesniffer extracts dominant, secondary and accent colours from images
and webpages.

Images are sampled and clustered with k-means. Webpages are analysed by a chain
of strategies (rendered screenshots, stylesheet analysis and page metadata)
with a deterministic fallback, so a URL always yields a palette.`,
	Version:      version.Short(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(batchCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

// loadConfig resolves configuration for cmd and builds the logger.
// --verbose and --quiet override the configured log level.
func loadConfig(cmd *cobra.Command) (*config.Config, hclog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Level()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = hclog.Debug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = hclog.Error
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "palettesniffer",
		Level:  level,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}

// newEngine loads configuration and builds an engine for cmd.
func newEngine(cmd *cobra.Command, adjust func(*config.Config), seed int64) (*engine.Engine, hclog.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if adjust != nil {
		adjust(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	e, err := engine.NewFromConfig(cfg, engine.BuildOptions{Logger: logger, Seed: seed})
	if err != nil {
		return nil, nil, err
	}
	return e, logger, nil
}
