package ingest

import (
	"context"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
)

// Dispatcher hands a freshly registered file to the analysis step. The queue
// implementation publishes a job for the worker pool; the inline fallback
// runs the analysis synchronously inside the registering request.
type Dispatcher interface {
	Dispatch(ctx context.Context, file database.ResumeFile) error
}

type inlineDispatcher struct {
	svc *Service
}

func (d inlineDispatcher) Dispatch(ctx context.Context, file database.ResumeFile) error {
	_, err := d.svc.Analyze(ctx, file)
	return err
}
