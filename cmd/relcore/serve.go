package main

import (
	"context"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/executor"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/server"
)

func runServe(ctx context.Context, cat *catalog.Catalog, cfg config.ServerConfig, log *logger.Logger) error {
	exec := executor.New(cat, executor.WithLogger(log))
	return server.New(exec, cfg, log).ListenAndServe(ctx)
}
