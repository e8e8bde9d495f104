package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hiring-pipeline/config"
	"hiring-pipeline/infrastructure"
	"hiring-pipeline/interfaces"
	"hiring-pipeline/logger"
	"hiring-pipeline/usecase"
)

func main() {
	// Load .env
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zl.Sync()

	db, err := infrastructure.OpenDatabase(cfg.DatabaseURL, cfg.SQLitePath, zl)
	if err != nil {
		zl.Fatal("opening database", zap.Error(err))
	}

	extractor := infrastructure.NewPDFExtractor(cfg.GeminiAPIKey, zl)
	evaluator := infrastructure.NewOpenAIEvaluator(cfg.OpenAIAPIKey, "", cfg.OpenAIModel, zl)
	mailer := infrastructure.NewSMTPMailer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.NotifyDefaultRecipient, zl)

	engine := usecase.NewEngine(cfg.Thresholds)
	pipeline := usecase.NewPipeline(db, engine, extractor, evaluator, mailer, zl)

	if !cfg.LogDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(interfaces.RequestID(), interfaces.RequestLogger(zl), gin.Recovery())
	interfaces.NewHTTPHandler(router, pipeline, zl)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}
}
