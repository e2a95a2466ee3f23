package main

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/streadway/amqp"

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

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("empty RABBITMQ_URL in environment")
	}

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
	svc := ingest.NewService(store, ext, queries, nil)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to RabbitMQ")
	}
	defer conn.Close()

	producer := queue.NewProducer(conn)
	consumer := queue.NewConsumer(cfg.RabbitMQURL, producer, svc, queries)

	log.Info().Int("workers", cfg.WorkerCount).Msg("starting analysis consumer pool")
	consumer.StartConsumerWorkerPool(cfg.WorkerCount)
}
