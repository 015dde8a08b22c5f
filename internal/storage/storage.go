// Package storage builds the configured snapshot.Store backend.
package storage

import (
	"context"

	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/database"
	"github.com/koustreak/relcore/internal/database/mysql"
	"github.com/koustreak/relcore/internal/database/postgres"
	"github.com/koustreak/relcore/internal/database/sqlite"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/filestore"
	"github.com/koustreak/relcore/internal/filestore/minio"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/snapshot/dirstore"
	"github.com/koustreak/relcore/internal/snapshot/objectstore"
)

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (snapshot.Store, error) {
	log = logger.OrNop(log).Component("storage")

	format, err := snapshot.ParseFormat(cfg.Format)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "storage format", err)
	}

	var store snapshot.Store
	switch cfg.Driver {
	case config.DriverMemory, "":
		store = snapshot.NewMemoryStore()
	case config.DriverDir:
		store, err = dirstore.Open(cfg.Dir, format)
	case config.DriverSQLite:
		store, err = openSQL(ctx, sqlite.Open, database.DriverSQLite, cfg.DSN)
	case config.DriverPostgres:
		store, err = openSQL(ctx, postgres.Open, database.DriverPostgres, cfg.DSN)
	case config.DriverMySQL:
		store, err = openSQL(ctx, mysql.Open, database.DriverMySQL, cfg.DSN)
	case config.DriverMinIO:
		store, err = openMinIO(ctx, cfg, format)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		log.ErrorWith("failed to open snapshot store", err, map[string]interface{}{"driver": cfg.Driver})
		return nil, err
	}

	log.InfoWith("snapshot store ready", map[string]interface{}{"driver": cfg.Driver, "format": string(format)})
	return store, nil
}

type sqlOpener func(ctx context.Context, cfg *database.Config) (*database.SnapshotStore, error)

func openSQL(ctx context.Context, open sqlOpener, driver database.Driver, dsn string) (snapshot.Store, error) {
	store, err := open(ctx, database.DefaultConfig(driver, dsn))
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openMinIO(ctx context.Context, cfg config.StorageConfig, format snapshot.Format) (snapshot.Store, error) {
	fcfg := filestore.DefaultConfig(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	fcfg.UseSSL = cfg.UseSSL
	fcfg.Region = cfg.Region
	fcfg.DefaultBucket = cfg.Bucket

	files, err := minio.New(ctx, fcfg)
	if err != nil {
		return nil, err
	}
	return objectstore.New(ctx, files, cfg.Bucket, cfg.Prefix, format)
}
