// Command cellar runs the sales preparation pipeline once over a dish export
// and an article catalog and writes the ABC and combined ABC/XYZ reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vinodismyname/mcpcellar/config"
	"github.com/vinodismyname/mcpcellar/internal/analysis"
	"github.com/vinodismyname/mcpcellar/internal/datasets"
	"github.com/vinodismyname/mcpcellar/internal/sheets"
)

type options struct {
	Dish        string
	Catalog     string
	Mode        string
	Metric      string
	Granularity string
	SliceBy     string
	Out         string
	Config      config.Config
}

func main() {
	var (
		opts       options
		configPath string
	)
	flag.StringVar(&opts.Dish, "dish", "", "Dish-level POS export (.xlsx)")
	flag.StringVar(&opts.Catalog, "catalog", "", "Wine article catalog (.xlsx)")
	flag.StringVar(&opts.Mode, "mode", string(analysis.ModeGlass), "glass or bottle")
	flag.StringVar(&opts.Metric, "metric", string(analysis.MetricRevenue), "revenue or profit")
	flag.StringVar(&opts.Granularity, "granularity", string(analysis.GranularityMonth), "week or month")
	flag.StringVar(&opts.SliceBy, "slice-by", string(analysis.SliceCategory), "none, category or glass_category")
	flag.StringVar(&configPath, "config", "", "TOML config file (defaults to $"+config.EnvConfigPath+")")
	flag.StringVar(&opts.Out, "out", "", "Output directory (defaults to the configured export dir next to the dish file)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := config.LoadEnv(); err != nil {
		logger.Warn().Err(err).Msg("config: .env not loaded")
	}
	cfg, err := config.Load(lo.CoalesceOrEmpty(configPath, os.Getenv(config.EnvConfigPath)))
	if err != nil {
		logger.Fatal().Err(err).Msg("config: failed to load")
	}
	opts.Config = cfg

	paths, err := run(logger.WithContext(context.Background()), opts)
	if err != nil {
		logger.Error().Err(err).Msg("cellar run failed")
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

// run loads both exports, classifies them and writes the two reports,
// returning the written paths.
func run(ctx context.Context, opts options) ([]string, error) {
	if opts.Dish == "" || opts.Catalog == "" {
		return nil, errors.New("both -dish and -catalog are required")
	}
	log := zerolog.Ctx(ctx)
	cfg := opts.Config

	mgr := datasets.NewManager(0, 0, nil, nil)
	defer func() { _ = mgr.Close(context.Background()) }()

	ds, err := mgr.Load(ctx, datasets.LoadRequest{
		DishPath:         opts.Dish,
		CatalogPath:      opts.Catalog,
		DishSheet:        cfg.Layout.DishSheet,
		CatalogSheet:     cfg.Layout.CatalogSheet,
		DishHeaderRow:    cfg.Layout.DishHeaderRow,
		CatalogHeaderRow: cfg.Layout.CatalogHeaderRow,
		MaxRows:          cfg.Limits.MaxRowsPerSheet,
	})
	if err != nil {
		return nil, err
	}
	for _, r := range ds.DishRejects {
		log.Debug().Int("line", r.Line).Str("reason", r.Reason).Msg("dish row rejected")
	}
	for _, r := range ds.ItemRejects {
		log.Debug().Int("line", r.Line).Str("reason", r.Reason).Msg("catalog row rejected")
	}

	abcCuts := analysis.Thresholds{A: cfg.Thresholds.A, B: cfg.Thresholds.B}
	abc, err := analysis.ClassifyABC(ds.Lines, analysis.ABCParams{
		Mode:       analysis.Mode(opts.Mode),
		Metric:     analysis.Metric(opts.Metric),
		Thresholds: abcCuts,
	})
	if err != nil {
		return nil, err
	}
	rep, err := analysis.BuildReport(ds.Lines, analysis.ReportParams{
		XYZParams: analysis.XYZParams{
			Granularity: analysis.Granularity(opts.Granularity),
			Mode:        analysis.Mode(opts.Mode),
			Metric:      analysis.Metric(opts.Metric),
			Thresholds:  analysis.StabilityThresholds{X: cfg.Thresholds.X, Y: cfg.Thresholds.Y},
		},
		ABC:     abcCuts,
		SliceBy: analysis.SliceBy(opts.SliceBy),
	})
	if err != nil {
		return nil, err
	}

	dir := opts.Out
	if dir == "" {
		dir = lo.CoalesceOrEmpty(cfg.Export.Dir, config.DefaultExportDir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(opts.Dish), dir)
		}
	}
	abcPath := filepath.Join(dir, sheets.DefaultABCFilename(abc.Mode, abc.Metric))
	if err := sheets.WriteABC(abcPath, abc); err != nil {
		return nil, err
	}
	repPath := filepath.Join(dir, sheets.DefaultReportFilename(rep.Mode, rep.Granularity))
	if err := sheets.WriteReport(repPath, rep); err != nil {
		return nil, err
	}

	log.Info().
		Int("sale_lines", len(ds.Lines)).
		Int("abc_rows", len(abc.Rows)).
		Int("report_rows", len(rep.Rows)).
		Str("dir", dir).
		Msg("reports written")
	return []string{abcPath, repPath}, nil
}
