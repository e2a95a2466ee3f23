package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
	"github.com/RioChndr/ai-resume-analyzer/internal/ingest"
	"github.com/RioChndr/ai-resume-analyzer/internal/logger"
)

// Consumer drains the analysis queue with a pool of workers. Each worker
// holds its own connection so a broken one does not stall the others.
type Consumer struct {
	url      string
	svc      *ingest.Service
	registry ingest.Registry
	producer *Producer
}

func NewConsumer(url string, producer *Producer, svc *ingest.Service, registry ingest.Registry) *Consumer {
	return &Consumer{url: url, svc: svc, registry: registry, producer: producer}
}

// StartConsumerWorkerPool blocks until all workers exit.
func (c *Consumer) StartConsumerWorkerPool(numWorkers int) {
	log := logger.Get()
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		log.Info().Int("worker_id", i+1).Msg("worker started")
		go c.worker(i, &wg)
	}
	wg.Wait()
}

func (c *Consumer) worker(id int, wg *sync.WaitGroup) {
	defer wg.Done()
	log := logger.Get().With().Int("worker_id", id+1).Logger()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		log.Fatal().Err(err).Msg("error dialling rabbitmq")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("error opening rabbitmq channel")
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		AnalysisQueue, // queue name
		true,          // durable (survives broker restarts)
		false,         // auto-delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to declare queue")
	}

	msgs, err := ch.Consume(
		AnalysisQueue, // queue name
		"",            // consumer tag
		true,          // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error consuming rabbitmq messages")
	}

	for msg := range msgs {
		var job AnalysisJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			log.Error().Err(err).Msg("error unmarshalling analysis job")
			continue
		}

		log.Info().Str("file_id", job.FileID.String()).Msg("processing analysis job")
		c.process(job, log)
	}
}

// process runs one analysis job fail-open: any failure is reported on the
// updates exchange and the registered file keeps its previous parsed_data.
func (c *Consumer) process(job AnalysisJob, log zerolog.Logger) {
	ctx := context.Background()

	c.publishUpdate(job, "processing", "analysis started", log)

	file, err := c.registry.GetResumeFileForOwner(ctx, database.GetResumeFileForOwnerParams{
		ID:      job.FileID,
		OwnerID: job.OwnerID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		// Deleted between dispatch and pickup.
		log.Info().Str("file_id", job.FileID.String()).Msg("file gone before analysis, skipping")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("file_id", job.FileID.String()).Msg("error loading file for analysis")
		c.publishUpdate(job, "failed", "analysis failed", log)
		return
	}

	if _, err := c.svc.Analyze(ctx, file); err != nil {
		log.Error().Err(err).Str("file_id", job.FileID.String()).Msg("analysis failed")
		c.publishUpdate(job, "failed", "analysis failed", log)
		return
	}

	log.Info().Str("file_id", job.FileID.String()).Msg("analysis completed")
	c.publishUpdate(job, "completed", "analysis completed", log)
}

func (c *Consumer) publishUpdate(job AnalysisJob, status, message string, log zerolog.Logger) {
	if err := c.producer.PublishFileUpdate(job.FileID, status, message); err != nil {
		log.Warn().Err(err).Msg("failed to publish file update")
	}
}
