// Command relcore runs the RelCore shell, HTTP API and demo.
//
// Usage:
//
//	relcore [-config relcore.yaml] [shell|serve|demo|config]
//
// With no subcommand the interactive shell starts. Settings come from the
// config file and RELCORE_* environment variables, e.g.
//
//	RELCORE_STORAGE_DRIVER=dir RELCORE_STORAGE_DIR=./data relcore serve
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ./relcore.yaml if present)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [shell|serve|demo|config]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	cmd := "shell"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "relcore %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, cfg *config.Config) error {
	switch cmd {
	case "config":
		return cfg.WriteYAML(os.Stdout)
	case "demo":
		return runDemo(os.Stdout)
	case "shell":
		log := newLogger(cfg, "warn")
		cat, err := openCatalog(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cat.Close()
		return runShell(cat, cfg.Shell, log)
	case "serve":
		log := newLogger(cfg, "")
		cat, err := openCatalog(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cat.Close()
		return runServe(ctx, cat, cfg.Server, log)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newLogger builds the process logger. minLevel raises the configured level
// for the shell so info lines do not interleave with query output.
func newLogger(cfg *config.Config, minLevel string) *logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	if minLevel != "" && (lc.Level == "debug" || lc.Level == "info") {
		lc.Level = minLevel
	}
	return logger.New(lc)
}

func openCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) (*catalog.Catalog, error) {
	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(ctx, store,
		catalog.WithLogger(log),
		catalog.WithPersistTimeout(cfg.Storage.Timeout),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	return cat, nil
}
