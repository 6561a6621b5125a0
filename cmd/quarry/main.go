package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quarrydb/quarry/pkg/config"
	"github.com/quarrydb/quarry/pkg/ingest"
	"github.com/quarrydb/quarry/pkg/logger"
	"github.com/quarrydb/quarry/pkg/store"
)

var version = "0.1.0"

// opResult is one timed operation row in the report.
type opResult struct {
	Dataset   string  `json:"dataset"`
	Layout    string  `json:"layout"`
	Mode      string  `json:"mode"`
	Operation string  `json:"operation"`
	Column    string  `json:"column"`
	Arg       string  `json:"arg"`
	Result    string  `json:"result"`
	Count     int     `json:"count"`
	Millis    float64 `json:"ms"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "quarry",
		Short: "Quarry - in-memory tabular record store with typed range scans",
		Long: `Quarry ingests indicator-series or sensor-observation CSV data into one of
three in-memory record-store layouts and answers typed column range queries,
min/max extremes, and per-year sums, sequentially or across a worker pool.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quarry v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var (
		configFile string
		path       string
		layoutName string
		colName    string
		minVal     string
		maxVal     string
		year       int
		workers    int
		format     string
		logLevel   string
	)

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Ingest a file or directory and run the query suite",
		Long: `Ingest the given CSV file or directory into a record store and time a
column range scan, a per-year sum, and the min/max extremes against it.

Example:
  quarry query --path data/sensors --layout columnar --col Value --min 0 --max 100 --workers 8
  quarry query --path worldbank.csv --layout compact --col Population --min 1e7 --max 1e8 --year 2019`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("layout") {
				cfg.Layout = layoutName
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: "json"}); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runQuery(cmd.Context(), cfg, path, colName, minVal, maxVal, year)
		},
	}

	queryCmd.Flags().StringVarP(&path, "path", "p", "", "CSV file or directory to ingest (required)")
	_ = queryCmd.MarkFlagRequired("path")
	queryCmd.Flags().StringVar(&configFile, "config", "", "Path to optional config file")
	queryCmd.Flags().StringVar(&layoutName, "layout", config.LayoutColumnar, "Store layout (linked, columnar, compact)")
	queryCmd.Flags().StringVar(&colName, "col", "Population", "Column to range-scan")
	queryCmd.Flags().StringVar(&minVal, "min", "0", "Inclusive lower bound")
	queryCmd.Flags().StringVar(&maxVal, "max", "1e18", "Inclusive upper bound")
	queryCmd.Flags().IntVar(&year, "year", 2020, "Year for the per-year sum")
	queryCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Worker count for parallel ingestion and scans")
	queryCmd.Flags().StringVar(&format, "format", "csv", "Output format (csv, json)")
	queryCmd.Flags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")

	root.AddCommand(queryCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, cfg *config.Config, path, colName, minVal, maxVal string, year int) error {
	col, err := store.ParseColumn(colName)
	if err != nil {
		return err
	}

	loadStart := time.Now()
	st, err := ingest.Load(ctx, path, cfg)
	if err != nil {
		return err
	}
	loadMillis := float64(time.Since(loadStart).Microseconds()) / 1000

	dataset := filepath.Base(path)
	mode := "serial"
	if cfg.Workers > 1 {
		mode = "parallel"
	}

	results := []opResult{{
		Dataset:   dataset,
		Layout:    st.Layout(),
		Mode:      mode,
		Operation: "load",
		Count:     st.Len(),
		Millis:    loadMillis,
	}}

	scanStart := time.Now()
	rows, err := st.RangeScan(col, minVal, maxVal)
	scanMillis := float64(time.Since(scanStart).Microseconds()) / 1000
	scanResult := fmt.Sprintf("%d", len(rows))
	if errors.Is(err, store.ErrUnsupportedColumn) {
		scanResult = "unsupported"
	} else if err != nil {
		return err
	}
	results = append(results, opResult{
		Dataset: dataset, Layout: st.Layout(), Mode: mode,
		Operation: "range_scan", Column: col.String(),
		Arg:    fmt.Sprintf("[%s;%s]", minVal, maxVal),
		Result: scanResult, Count: len(rows), Millis: scanMillis,
	})

	sumStart := time.Now()
	sum := st.SumByYear(year)
	sumMillis := float64(time.Since(sumStart).Microseconds()) / 1000
	results = append(results, opResult{
		Dataset: dataset, Layout: st.Layout(), Mode: mode,
		Operation: "sum_by_year", Column: "Year",
		Arg:    fmt.Sprintf("%d", year),
		Result: fmt.Sprintf("%g", sum), Millis: sumMillis,
	})

	minStart := time.Now()
	minRow, minOK := st.FindMin()
	minMillis := float64(time.Since(minStart).Microseconds()) / 1000
	results = append(results, extremumResult(dataset, st, mode, "find_min", minRow, minOK, minMillis))

	maxStart := time.Now()
	maxRow, maxOK := st.FindMax()
	maxMillis := float64(time.Since(maxStart).Microseconds()) / 1000
	results = append(results, extremumResult(dataset, st, mode, "find_max", maxRow, maxOK, maxMillis))

	logger.Debug("query suite complete",
		zap.String("dataset", dataset),
		zap.Int("rows", st.Len()))

	return report(cfg.Format, results)
}

func extremumResult(dataset string, st *store.Store, mode, op string, row store.RowView, ok bool, millis float64) opResult {
	result := ""
	if ok {
		result = fmt.Sprintf("%g", row.Metric)
	}
	return opResult{
		Dataset: dataset, Layout: st.Layout(), Mode: mode,
		Operation: op, Column: "Metric",
		Result: result, Count: st.Len(), Millis: millis,
	}
}

func report(format string, results []opResult) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Println("dataset,layout,mode,operation,column,arg,result,count,ms")
	for _, r := range results {
		fmt.Printf("%s,%s,%s,%s,%s,%s,%s,%d,%.3f\n",
			r.Dataset, r.Layout, r.Mode, r.Operation, r.Column, r.Arg, r.Result, r.Count, r.Millis)
	}
	return nil
}
