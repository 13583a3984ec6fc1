package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/astropipe/internal/pipeline"
	"github.com/ajitpratap0/astropipe/pkg/catalog"
	"github.com/ajitpratap0/astropipe/pkg/config"
	"github.com/ajitpratap0/astropipe/pkg/derive"
	"github.com/ajitpratap0/astropipe/pkg/formats/arrowconv"
	"github.com/ajitpratap0/astropipe/pkg/logger"

	// Import available catalog sources to register them
	_ "github.com/ajitpratap0/astropipe/pkg/catalog/exoarchive"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "astropipe",
		Short: "astropipe - unit-aware catalog data pipeline",
		Long: `astropipe fetches tabular data from astronomical catalog services,
derives unit-checked physical quantities, filters rows, and exports Arrow
record batches for plotting and analysis tools.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("astropipe v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available catalog sources and formulas",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available Catalog Sources:")
			for _, source := range catalog.ListSources() {
				fmt.Printf("  - %s\n", source)
			}
			fmt.Println("\nAvailable Formulas:")
			for _, formula := range derive.Default().Formulas() {
				fmt.Printf("  - %s\n", formula)
			}
		},
	})

	var configFile, outputFile, logLevel string
	var timeout time.Duration

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a catalog pipeline",
		Long: `Run a fetch-derive-filter pipeline from a YAML configuration and write
the resulting table as an Arrow IPC file.

Example:
  astropipe run --config pipeline.yaml --output planets.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(configFile, outputFile, logLevel, timeout)
		},
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to pipeline YAML configuration (required)")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Path of the Arrow IPC output file (required)")
	_ = runCmd.MarkFlagRequired("config")
	_ = runCmd.MarkFlagRequired("output")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Pipeline timeout")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runPipeline executes the pipeline described by the configuration file
// and writes the final table to the output path.
func runPipeline(configFile, outputFile, logLevel string, timeout time.Duration) error {
	var cfg pipeline.Config
	if err := config.Load(configFile, &cfg); err != nil {
		return fmt.Errorf("pipeline configuration error: %w", err)
	}

	if err := logger.Init(logger.Config{Level: logLevel, Encoding: "console"}); err != nil {
		return fmt.Errorf("logger initialization error: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With(
		zap.String("component", "astropipe-cli"),
		zap.String("source", cfg.Source.Type))

	source, err := catalog.CreateSource(cfg.Source.Type, &cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create catalog source '%s': %w", cfg.Source.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("starting pipeline",
		zap.String("config", configFile),
		zap.String("catalog_table", cfg.Query.Table),
		zap.Strings("formulas", cfg.Formulas))

	p := pipeline.New(source, derive.Default(), &cfg, log)

	startTime := time.Now()
	tbl, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline execution failed: %w", err)
	}

	out, err := os.Create(outputFile) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := arrowconv.WriteIPC(out, tbl); err != nil {
		return fmt.Errorf("failed to write Arrow output: %w", err)
	}

	log.Info("pipeline completed successfully",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("rows", tbl.RowCount()),
		zap.String("output", outputFile))

	if err := source.Close(ctx); err != nil {
		log.Warn("failed to close catalog source", zap.Error(err))
	}

	return nil
}
