package main

import (
	"context"
	"fmt"
	"os"

	"github.com/loziogigio/omnicommerce/internal/app"
	"github.com/loziogigio/omnicommerce/internal/cli"
	"github.com/loziogigio/omnicommerce/internal/config"
	esengine "github.com/loziogigio/omnicommerce/internal/engine/elasticsearch"
	"github.com/loziogigio/omnicommerce/pkg/logger"
)

func main() {
	root := cli.NewRootCommand(open, openIndex)
	root.SetOut(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func open(ctx context.Context) (cli.Catalogue, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	// Diagnostics go to stderr so JSON output stays clean.
	log := logger.NewWithWriter("catalogctl", cfg.LogLevel, os.Stderr)

	graph, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return graph.Catalogue, graph.Close, nil
}

func openIndex(ctx context.Context) (cli.Indexer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.SearchEngine != config.EngineElasticsearch {
		return nil, fmt.Errorf("seed --index needs SEARCH_ENGINE=%s, got %q", config.EngineElasticsearch, cfg.SearchEngine)
	}

	log := logger.NewWithWriter("catalogctl", cfg.LogLevel, os.Stderr)
	eng, err := esengine.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, log)
	if err != nil {
		return nil, err
	}
	return eng, nil
}
