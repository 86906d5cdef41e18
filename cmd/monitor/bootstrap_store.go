package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/record"
	"github.com/NordCoder/Uptimer/internal/obs/retry"
	"github.com/NordCoder/Uptimer/internal/repository/file"
	pg "github.com/NordCoder/Uptimer/internal/repository/postgres"
	redisrepo "github.com/NordCoder/Uptimer/internal/repository/redis"
)

type storeHandle struct {
	store  record.Store
	health func(context.Context) error
	close  func()
}

func initStore(ctx context.Context, cfg config.StoreCfg, l *zap.Logger) (*storeHandle, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		var db *pg.DB
		err := retry.Do(ctx, func() error {
			var err error
			db, err = pg.New(ctx, cfg.Postgres.Pool())
			return err
		}, retry.ConnectPolicy("postgres", l))
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if cfg.Postgres.Migrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
			l.Info("postgres migrations applied")
		}
		return &storeHandle{store: pg.NewRecordRepo(db), health: db.Ping, close: db.Close}, nil

	case config.DriverRedis:
		var repo *redisrepo.RecordRepoImpl
		err := retry.Do(ctx, func() error {
			var err error
			repo, err = redisrepo.New(ctx, redisrepo.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
			})
			return err
		}, retry.ConnectPolicy("redis", l))
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		return &storeHandle{store: repo, health: repo.Ping, close: func() { _ = repo.Close() }}, nil

	default:
		fs, err := file.NewRecordStore(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		return &storeHandle{store: fs, health: func(context.Context) error { return nil }, close: func() {}}, nil
	}
}
