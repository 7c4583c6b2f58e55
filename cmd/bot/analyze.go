package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/recorder"
	"SwingSentinel/internal/report"
	"SwingSentinel/internal/strategy"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and print it",
	Long:  `Fetches bars for a configured asset, or reads them from a CSV file, and prints levels, key levels and signals.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		name, err := cmd.Flags().GetString("asset")
		if err != nil {
			log.Fatalf("error getting asset: %v", err)
		}
		csvPath, err := cmd.Flags().GetString("csv")
		if err != nil {
			log.Fatalf("error getting csv: %v", err)
		}

		if name == "" {
			name = cfg.DefaultAsset
		}
		asset, ok := cfg.Asset(name)
		col := newCollector(cfg)
		if csvPath != "" {
			if !ok {
				symbol := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
				asset = model.Asset{Name: name, Symbol: symbol}
			}
			asset.Market = model.MarketCSV
			col.Register(model.MarketCSV, &collector.CSVFetcher{Path: csvPath})
		} else if !ok {
			log.Fatalf("asset %q is not configured", name)
		}

		ctx := context.Background()
		series, err := col.Collect(ctx, asset)
		if err != nil {
			log.Fatalf("collect %s: %v", asset.Name, err)
		}

		a := strategy.Analyze(asset, series, cfg.Engine)

		if err := writeAnalysis(ctx, os.Stdout, newRecorder(cfg), a); err != nil {
			log.Fatalf("write report: %v", err)
		}
	},
}

// writeAnalysis records a and prints its report. rec is closed before it returns.
func writeAnalysis(ctx context.Context, w io.Writer, rec recorder.Recorder, a *model.Analysis) error {
	defer func() {
		if err := rec.Close(); err != nil {
			log.WithError(err).Warn("close recorder")
		}
	}()
	if _, err := rec.RecordAnalysis(ctx, recorder.SourceCLI, a); err != nil {
		log.WithError(err).Warn("record analysis failed")
	}
	return report.Write(w, a)
}

func init() {
	analyzeCmd.Flags().StringP("asset", "a", "", "Configured asset name. Defaults to default_asset.")
	analyzeCmd.Flags().String("csv", "", "Read bars from this CSV file instead of the asset's market.")
}
