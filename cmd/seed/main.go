package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/config"
	"github.com/collabhub/collabhub-backend/internal/bootstrap"
	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/localcache"
	"github.com/collabhub/collabhub-backend/internal/projects/remote"
	"github.com/collabhub/collabhub-backend/internal/projects/service"
	"github.com/collabhub/collabhub-backend/internal/seed"
)

func main() {
	path := flag.String("file", "fixtures/projects.yaml", "YAML fixtures to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.App.LogLevel, cfg.App.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*path)
	if err != nil {
		log.WithError(err).Fatal("Failed to open fixtures")
	}
	defer f.Close()

	fixtures, err := seed.Parse(f)
	if err != nil {
		log.WithError(err).Fatal("Failed to read fixtures")
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()

	local := localcache.NewStore(rdb, cfg.Redis.Namespace)

	var table remote.Table
	switch cfg.Remote.Backend {
	case config.RemoteBackendPostgrest:
		sb, err := bootstrap.NewSupabaseClient(cfg.Supabase)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Supabase client")
		}
		table = remote.NewPostgrestTable(sb, cfg.Remote.Table)
	case config.RemoteBackendPostgres:
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN, MaxConns: 2})
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer pool.Close()
		table = remote.NewSQLTable(bootstrap.SQLDB(pool), cfg.Remote.Table)
	}

	svc := service.NewProjectService(local, remote.NewAdapter(table, local, log), log)

	rep, err := seed.Run(ctx, svc, fixtures, log)
	if err != nil {
		log.WithError(err).Error("Seeding interrupted")
	}
	log.WithFields(logrus.Fields{
		"saved":    rep.Saved,
		"warnings": rep.Warnings,
		"failed":   rep.Failed,
	}).Info("Seeding finished")
}
