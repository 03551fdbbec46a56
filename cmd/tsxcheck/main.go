// Package main provides tsxcheck, which parses and validates Tiled tileset
// descriptors and optionally prints a summary or the canonical encoding.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tileset/internal/config"
	"github.com/cory-johannsen/tileset/internal/observability"
	"github.com/cory-johannsen/tileset/internal/report"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

func main() {
	configPath := flag.String("config", "", "optional configuration file for logging settings")
	summary := flag.Bool("summary", false, "print a summary of each tileset")
	canonical := flag.Bool("canonical", false, "print the canonical encoding of each tileset")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tsxcheck [-config <file>] [-summary] [-canonical] <file.tsx>...")
		os.Exit(2)
	}

	logger, err := newLogger(*configPath)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	for _, path := range flag.Args() {
		d, err := tileset.LoadFromFile(path)
		if err != nil {
			logger.Error("invalid tileset", zap.String("path", path), zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
		logger.Info("tileset ok",
			observability.Tileset(d.Name, path),
			zap.Int("tiles", d.TileCount),
			zap.Int("wang_sets", len(d.WangSets)),
		)

		if *summary {
			if err := report.WriteSummary(os.Stdout, d); err != nil {
				logger.Fatal("writing summary", zap.Error(err))
			}
		}
		if *canonical {
			out, err := tileset.Serialize(d)
			if err != nil {
				logger.Fatal("serialising tileset", zap.String("path", path), zap.Error(err))
			}
			if _, err := os.Stdout.Write(out); err != nil {
				logger.Fatal("writing canonical encoding", zap.Error(err))
			}
		}
	}
}

func newLogger(configPath string) (*zap.Logger, error) {
	if configPath == "" {
		return observability.NewCLILogger("warn")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(cfg.Logging)
}
