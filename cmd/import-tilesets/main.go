// Package main provides the tileset import binary: it converts a directory of
// Tiled .tsx descriptors into manifest YAML and optionally records them in the
// catalog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tileset/internal/config"
	"github.com/cory-johannsen/tileset/internal/importer"
	"github.com/cory-johannsen/tileset/internal/importer/tiled"
	"github.com/cory-johannsen/tileset/internal/lint"
	"github.com/cory-johannsen/tileset/internal/observability"
	"github.com/cory-johannsen/tileset/internal/storage/postgres"
)

const healthTimeout = 5 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("source", "", "directory of .tsx files (overrides import.source_dir)")
	outputDir := flag.String("output", "", "manifest output directory (overrides import.output_dir)")
	lintDir := flag.String("lint", "", "directory of Lua lint scripts (overrides import.lint_dir)")
	persist := flag.Bool("persist", false, "store descriptors in the catalog database")
	flag.Parse()

	v := config.NewViper()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	if *sourceDir != "" {
		v.Set("import.source_dir", *sourceDir)
	}
	if *outputDir != "" {
		v.Set("import.output_dir", *outputDir)
	}
	if *lintDir != "" {
		v.Set("import.lint_dir", *lintDir)
	}
	if *persist {
		v.Set("import.persist", true)
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	imp := importer.New(tiled.NewSource(), logger)

	linter := lint.New(cfg.Import.LintInstructionLimit, logger)
	defer linter.Close()
	if cfg.Import.LintDir != "" {
		if err := linter.LoadDir(cfg.Import.LintDir); err != nil {
			logger.Fatal("loading lint scripts", zap.Error(err))
		}
		logger.Info("lint scripts loaded", zap.Strings("scripts", linter.Scripts()))
	}
	imp.Linter = linter

	if cfg.Import.Persist {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, healthTimeout); err != nil {
			logger.Fatal("catalog unavailable", zap.Error(err))
		}
		logger.Info("catalog ready", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		imp.Store = postgres.NewTilesetRepository(pool.DB())
	}

	imp.Progress = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	sum, err := imp.Run(ctx, cfg.Import.SourceDir, cfg.Import.OutputDir)
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	fmt.Printf("imported %d tilesets (%d persisted, %d unchanged, %d lint warnings) in %s\n",
		sum.Written, sum.Persisted, sum.Unchanged, sum.Warnings, time.Since(start).Round(time.Millisecond))
}
