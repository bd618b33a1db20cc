package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/config"
	"github.com/collabhub/collabhub-backend/internal/api/http/middleware"
	"github.com/collabhub/collabhub-backend/internal/api/http/routes"
	"github.com/collabhub/collabhub-backend/internal/auth"
	authhttp "github.com/collabhub/collabhub-backend/internal/auth/http"
	"github.com/collabhub/collabhub-backend/internal/bootstrap"
	chathttp "github.com/collabhub/collabhub-backend/internal/chat/http"
	"github.com/collabhub/collabhub-backend/internal/chat/presence"
	chatrepo "github.com/collabhub/collabhub-backend/internal/chat/repository"
	chatservice "github.com/collabhub/collabhub-backend/internal/chat/service"
	"github.com/collabhub/collabhub-backend/internal/cronjob"
	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/engagement"
	projecthttp "github.com/collabhub/collabhub-backend/internal/projects/http"
	"github.com/collabhub/collabhub-backend/internal/projects/localcache"
	"github.com/collabhub/collabhub-backend/internal/projects/remote"
	projectservice "github.com/collabhub/collabhub-backend/internal/projects/service"
	"github.com/collabhub/collabhub-backend/internal/uploads"
	uploadhttp "github.com/collabhub/collabhub-backend/internal/uploads/http"
)

const (
	serviceName    = "collabhub-backend"
	sessionMaxIdle = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg.App.LogLevel, cfg.App.LogFormat, os.Stdout)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")

	sb, err := bootstrap.NewSupabaseClient(cfg.Supabase)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Supabase client")
	}

	local := localcache.NewStore(rdb, cfg.Redis.Namespace)

	var table remote.Table
	switch cfg.Remote.Backend {
	case config.RemoteBackendPostgrest:
		table = remote.NewPostgrestTable(sb, cfg.Remote.Table)
	case config.RemoteBackendPostgres:
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer pool.Close()
		db := bootstrap.SQLDB(pool)
		defer db.Close()
		table = remote.NewSQLTable(db, cfg.Remote.Table)
	}
	adapter := remote.NewAdapter(table, local, log)
	log.WithField("backend", adapter.Backend()).Info("Remote project store configured")

	projects := projectservice.NewProjectService(local, adapter, log)
	overlay := engagement.NewOverlay()

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize authentication")
	}
	log.WithField("provider", verifier.Name()).Info("Authentication configured")

	sessions := auth.NewSessions()
	tracker := presence.NewTracker(rdb, cfg.Redis.Namespace, 0, log)
	stopFollow := tracker.Follow(sessions)
	defer stopFollow()

	chats := chatservice.NewChatService(chatrepo.NewChatRepository(rdb, cfg.Redis.Namespace), log)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	v1 := routes.V1Deps{
		Verifier:    verifier,
		Sessions:    sessions,
		RateLimiter: limiter,
		Log:         log,
		Auth:        authhttp.New(verifier, sessions, log),
		Projects:    projecthttp.New(projects, overlay, log),
		Chats:       chathttp.New(chats, tracker, log),
	}
	if sb != nil {
		v1.Uploads = uploadhttp.New(uploads.NewUploader(sb.Storage, cfg.Supabase.StorageBucket), log)
	} else {
		log.Warn("Supabase storage not configured, image uploads disabled")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  serviceName,
		Version:      cfg.App.Version,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Log:          log,
		Local:        local,
		Remote:       adapter,
		V1:           v1,
	})

	scheduler := cronjob.NewScheduler(log)
	jobs := []cronjob.Job{
		cronjob.PresenceSweep(tracker, log),
		cronjob.SessionExpiry(sessions, sessionMaxIdle, log),
		{
			Name: "rate-limit-prune",
			Spec: "0 */10 * * * *",
			Run: func(context.Context) error {
				limiter.Prune()
				return nil
			},
		},
	}
	for _, job := range jobs {
		if err := scheduler.Add(job); err != nil {
			log.WithError(err).Fatalf("Failed to schedule %s", job.Name)
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		// Zero by default so chat streams are not cut off.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.App.Environment,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
}

func buildVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		client, err := auth.InitializeFirebase(ctx, &cfg.Auth)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseVerifier(client), nil
	case config.AuthProviderHeader:
		return auth.NewHeaderVerifier(), nil
	default:
		return auth.NewSupabaseVerifier(bootstrap.NewGoTrueClient(cfg)), nil
	}
}
