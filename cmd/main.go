package main

import (
	"SurgiFlow/config"
	"SurgiFlow/database"
	"SurgiFlow/logger"
	"SurgiFlow/routes"
	"SurgiFlow/services"
	"SurgiFlow/templates"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg.DBURL, cfg.Env)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	// Without Redis the scheduler and submission fall back to database
	// transactions only.
	var locker services.Locker = database.NopLocker{}
	if cfg.RedisAddress != "" {
		client, err := database.NewRedisClient(ctx, database.LoadRedisConfig(cfg.RedisAddress))
		if err != nil {
			log.Fatal("failed to initialize Redis client", "error", err)
		}
		defer client.Close()
		locker = database.NewRedisLocker(client, log)
	} else {
		log.Warn("REDIS_URL not set, PROM scheduling and submission run without a distributed lock")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("failed to create upload directory", "dir", cfg.UploadDir, "error", err)
	}

	handler, err := routes.SetupRoutes(routes.Deps{
		Config:    cfg,
		DB:        db,
		Locker:    locker,
		Logger:    log,
		Templates: templates.NewDirStore(cfg.TemplateDir),
	})
	if err != nil {
		log.Fatal("failed to set up routes", "error", err)
	}

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		log.Info("starting server", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listenAndServe failed", "error", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	wg.Wait()
	log.Info("server exited gracefully")
}
