package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/config"
	"github.com/Khyle1o1/student-management-system-sub000/db"
	"github.com/Khyle1o1/student-management-system-sub000/handlers"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	api "github.com/Khyle1o1/student-management-system-sub000/routes"
	"github.com/Khyle1o1/student-management-system-sub000/services"
	"github.com/Khyle1o1/student-management-system-sub000/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, logo uploads disabled")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	staffRepo := repositories.NewPostgresStaffRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authService := services.NewAuthService(staffRepo, cfg.JWTSecretKey, logger)
	teamService := services.NewTeamService(teamRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, matchRepo, uploader, logger)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, teamRepo, matchRepo, uploader, wsHub, logger)
	seedingService := services.NewSeedingService(dbConn, tournamentRepo, teamRepo, matchRepo, wsHub, logger, rng)
	matchService := services.NewMatchService(dbConn, tournamentRepo, teamRepo, matchRepo, wsHub, logger)
	logger.Info("services initialized")

	// Background scheduler: move upcoming tournaments to ongoing by date.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()

		if err := tournamentService.AutoUpdateStatusesByDates(context.Background(), time.Now()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.AutoUpdateStatusesByDates(context.Background(), time.Now()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()
	logger.Info("tournament status scheduler started", slog.Duration("interval", schedulerInterval))

	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	bracketHandler := handlers.NewBracketHandler(bracketService, seedingService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		teamHandler,
		tournamentHandler,
		bracketHandler,
		matchHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shut down gracefully")
		}
	}
}
