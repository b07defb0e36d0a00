package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"volunteerhub/internal/config"
	"volunteerhub/internal/database"
	"volunteerhub/internal/extract"
	"volunteerhub/internal/logger"
	"volunteerhub/internal/middleware"
	"volunteerhub/internal/modules/forms"
	jwtsvc "volunteerhub/internal/pkg/jwt"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}

	fileRepo := repository.NewUploadedFileRepository(db)
	partnershipRepo := repository.NewPartnershipLogRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	extractor, err := extract.NewOpenAIExtractor(extract.OpenAIConfig{
		BaseURL: cfg.ExtractorBaseURL,
		APIKey:  cfg.ExtractorAPIKey,
		Model:   cfg.ExtractorModel,
		Timeout: cfg.ExtractorTimeout,
	}, logger.Get())
	if err != nil {
		log.Fatal().Err(err).Msg("extractor")
	}

	classifier := extract.NewClassifier(partnershipRepo, activityRepo)
	processor := extract.NewProcessor(extractor, classifier, fileRepo, logger.Get())
	pool := worker.NewPool(processor, logger.Get(),
		worker.WithWorkers(cfg.WorkerCount),
		worker.WithQueueSize(cfg.QueueSize),
		worker.WithMaxAttempts(cfg.MaxAttempts),
	)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)
	formsService := forms.NewService(fileRepo, pool, logger.Get())
	formsHandler := forms.NewHandler(formsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			formsHandler.RegisterRoutes(protected)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// Drain in-flight extractions after the HTTP surface stops accepting
	// new batches.
	pool.Shutdown(ctx)
}
