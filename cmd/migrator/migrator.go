package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/obs"
	"github.com/NordCoder/Uptimer/internal/obs/retry"
	pg "github.com/NordCoder/Uptimer/internal/repository/postgres"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "uptimer-migrator", Env: os.Getenv("APP_ENV")})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	var db *pg.DB
	err = retry.Do(ctx, func() error {
		var err error
		db, err = pg.New(ctx, pg.Config{URL: dsn, MaxConns: 2, QueryTimeout: 30 * time.Second})
		return err
	}, retry.ConnectPolicy("postgres", l))
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		l.Fatal("migrate", zap.Error(err))
	}
	l.Info("migrations: up OK")
}
