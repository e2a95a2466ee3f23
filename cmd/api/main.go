package main

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"

	"github.com/RioChndr/ai-resume-analyzer/internal/api"
	"github.com/RioChndr/ai-resume-analyzer/internal/config"
	"github.com/RioChndr/ai-resume-analyzer/internal/database"
	"github.com/RioChndr/ai-resume-analyzer/internal/extractor"
	"github.com/RioChndr/ai-resume-analyzer/internal/ingest"
	"github.com/RioChndr/ai-resume-analyzer/internal/logger"
	"github.com/RioChndr/ai-resume-analyzer/internal/queue"
	"github.com/RioChndr/ai-resume-analyzer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening db")
	}
	queries := database.New(db)

	store, err := storage.NewS3Store(context.Background(), &cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating object store client")
	}

	ext := extractor.NewClient(cfg.ExtractorURL)

	// Without a broker the API analyzes uploads inline, fail-open.
	var dispatcher ingest.Dispatcher
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to RabbitMQ")
		}
		defer conn.Close()
		dispatcher = queue.NewProducer(conn)
		log.Info().Msg("analysis jobs will be dispatched to the worker queue")
	} else {
		log.Info().Msg("no RABBITMQ_URL set, running analysis inline")
	}

	svc := ingest.NewService(store, ext, queries, dispatcher)
	handler := api.NewHandler(svc, queries)

	router := gin.Default()
	api.SetupRoutes(router, handler)

	log.Info().Str("port", cfg.Port).Msg("starting api server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
