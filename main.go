package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carpool/internal/auth"
	intconfig "carpool/internal/config"
	intdb "carpool/internal/db"
	router "carpool/internal/http"
	"carpool/internal/http/handlers"
	"carpool/internal/logger"
	"carpool/internal/metrics"
	"carpool/internal/repositories"
	"carpool/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	log, err := logger.New(env.LogLevel, env.Release())
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if env.InsecureSecret() && env.Release() {
		log.Warn("JWT_SECRET is unset or uses the development default in release mode")
	}

	if env.AutoMigrate {
		conn, err := intconfig.OpenMigrationConn(env)
		if err != nil {
			log.Fatal("open migration connection", logger.Error(err))
		}
		if err := intdb.Up(env.MigrationDriver(), conn); err != nil {
			log.Fatal("run migrations", logger.Error(err))
		}
		log.Info("migrations applied", logger.String("driver", env.MigrationDriver()))
	}

	db, err := intconfig.OpenDB(context.Background(), env)
	if err != nil {
		log.Fatal("connect database", logger.Error(err))
	}
	defer db.Close()

	users := repositories.UserRepository{DB: db}
	shares := repositories.ShareRepository{DB: db}
	requests := repositories.RequestRepository{DB: db}

	tokens := auth.NewTokenManager(env.JWTSecret)
	m := metrics.New("carpool")

	shareSvc := services.ShareService{
		Shares:   shares,
		Requests: requests,
		Location: env.Location,
		Events:   m,
		Log:      log,
	}
	docsSvc := services.DocsService{
		Users:    users,
		Shares:   shares,
		Requests: requests,
		Location: env.Location,
		Log:      log,
	}

	r := router.NewRouter(router.Deps{
		Handlers: handlers.Handlers{
			Auth:   services.AuthService{Users: users, Tokens: tokens, Log: log},
			Shares: shareSvc,
			Admin:  services.AdminService{Users: users, Shares: shares, Requests: requests},
			Docs:   docsSvc,
			DB:     db,
			Log:    log,
		},
		Tokens:         tokens,
		Metrics:        m,
		Log:            log,
		AllowedOrigins: env.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", logger.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", logger.Error(err))
		return
	}

	log.Info("server stopped")
}
