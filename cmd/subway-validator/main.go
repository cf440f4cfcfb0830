package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/transit-tools/subway-validator/config"
	"github.com/transit-tools/subway-validator/logging"
	"github.com/transit-tools/subway-validator/orchestrator"
	"github.com/transit-tools/subway-validator/output"
)

var (
	citiesFile       string
	osmFile          string
	outputFile       string
	outputFormat     string
	overpassAPI      string
	overground       bool
	recoveryData     string
	configFile       string
	generateConfig   bool
	concurrentCities int
	verbose          bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "subway-validator",
		Short: "Rapid-transit OSM data validator",
		Long: `Reconstructs a city's subway/light-rail network from OpenStreetMap data
and validates it against a reference registry of expected stations,
lines, and interchanges.

Examples:
  subway-validator --cities cities.csv --osm dump.osm.json --format json
  subway-validator --cities cities.csv --format gtfs --output feed.zip
  subway-validator --cities cities.csv --osm dump.osm --format html --output report.html`,
		RunE: runValidate,
	}

	rootCmd.Flags().StringVar(&citiesFile, "cities", "", "City registry CSV (required)")
	rootCmd.Flags().StringVar(&osmFile, "osm", "", "Local OSM data file (Overpass JSON or .osm XML); omit to fetch from Overpass")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json, html, gtfs, routing, geojson")
	rootCmd.Flags().StringVar(&overpassAPI, "overpass-api", orchestrator.DefaultOverpassAPI, "Overpass API endpoint used when --osm is omitted")
	rootCmd.Flags().BoolVar(&overground, "overground", false, "Include overground modes (tram) alongside rapid transit")
	rootCmd.Flags().StringVar(&recoveryData, "recovery-data", "", "Prior run's itinerary cache, for stop-order recovery")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&generateConfig, "generate-config", false, "Generate a default configuration file and exit")
	rootCmd.Flags().IntVar(&concurrentCities, "concurrent-cities", 4, "Number of cities to process in parallel")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.MarkFlagRequired("cities")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	if generateConfig {
		path := configFile
		if path == "" {
			path = "subway-validator.yaml"
		}
		if err := config.GenerateDefaultConfigFile(path); err != nil {
			return fmt.Errorf("generating default config: %w", err)
		}
		fmt.Printf("Generated default configuration file: %s\n", path)
		return nil
	}

	if verbose {
		logging.SetDefaultLogger(logging.NewDebugLogger())
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	opts := orchestrator.Options{
		CitiesPath:       citiesFile,
		OSMPath:          osmFile,
		OverpassAPI:      overpassAPI,
		Overground:       overground,
		RecoveryDataPath: recoveryData,
		ConcurrentCities: concurrentCities,
		Config:           cfg,
	}

	result, err := orchestrator.Run(context.Background(), opts)
	if err != nil {
		switch err {
		case orchestrator.ErrNoCities:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		case orchestrator.ErrTooManyCitiesForFetch:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(3)
		}
		return err
	}

	if err := writeOutput(result, outputFormat, outputFile); err != nil {
		return err
	}

	if result.Report.HasErrors() {
		os.Exit(1)
	}
	return nil
}

func writeOutput(result *orchestrator.Result, format, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path) //nolint:gosec // path is operator-supplied via CLI flag
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		return writeFormat(f, result, format)
	}
	return writeFormat(w, result, format)
}

func writeFormat(w *os.File, result *orchestrator.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	case "html":
		reporter := output.NewHTMLReporter()
		html, err := reporter.GenerateHTML(result.Report)
		if err != nil {
			return err
		}
		_, err = w.WriteString(html)
		return err
	case "gtfs":
		return output.WriteGTFS(w, result.Cities)
	case "routing":
		return output.WriteRouting(w, result.Cities)
	case "geojson":
		fc := output.UnusedEntrancesFeatureCollection(result.Cities)
		data, err := fc.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s (supported: json, html, gtfs, routing, geojson)", format)
	}
}
