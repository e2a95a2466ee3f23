package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
)

const (
	// AnalysisQueue carries one job per registered file awaiting analysis.
	AnalysisQueue = "resume_analysis"
	// UpdatesExchange receives per-file status updates, routed as file.<id>.
	UpdatesExchange = "file_updates"
)

// AnalysisJob is the queued request to analyze one registered file. The
// owner id travels with the job so the worker's lookup stays owner-scoped.
type AnalysisJob struct {
	FileID  uuid.UUID `json:"file_id"`
	OwnerID string    `json:"owner_id"`
}

type Producer struct {
	conn *amqp.Connection
}

func NewProducer(conn *amqp.Connection) *Producer {
	return &Producer{conn: conn}
}

// Dispatch implements ingest.Dispatcher by publishing an analysis job for the
// worker pool. The registering request returns as soon as the job is queued.
func (p *Producer) Dispatch(ctx context.Context, file database.ResumeFile) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
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
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(AnalysisJob{FileID: file.ID, OwnerID: file.OwnerID})
	if err != nil {
		return fmt.Errorf("failed to marshal analysis job: %w", err)
	}

	return ch.Publish(
		"",            // default exchange
		AnalysisQueue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// PublishFileUpdate emits an analysis status update for clients following a
// file. Delivery is best-effort; the registry row is the source of truth.
func (p *Producer) PublishFileUpdate(fileID uuid.UUID, status, message string) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, _ := json.Marshal(map[string]any{
		"file_id":   fileID,
		"status":    status,
		"message":   message,
		"timestamp": time.Now(),
	})
	routingKey := fmt.Sprintf("file.%s", fileID)

	return ch.Publish(
		UpdatesExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
