package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/RioChndr/ai-resume-analyzer/internal/logger"
	apperrors "github.com/RioChndr/ai-resume-analyzer/pkg/errors"
)

// The service accepts the document as a single form field.
const (
	formField    = "data"
	formFileName = "resume.pdf"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: logger.Get(),
	}
}

// Extract posts the document bytes to the extraction endpoint and returns the
// validated structured result. No retry is performed here; retries are the
// caller's concern.
func (c *Client) Extract(ctx context.Context, document []byte) (*ParsedResume, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(formField, formFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build form file: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug().Int("document_bytes", len(document)).Str("endpoint", c.endpoint).Msg("sending document to extraction service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ExtractionServiceError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.ExtractionServiceError{
			StatusCode: resp.StatusCode,
			Message:    "unexpected response status",
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExtractionServiceError{Message: "failed to read response body: " + err.Error()}
	}

	return decodeParsedResume(payload)
}

// decodeParsedResume unwraps the array-or-object response shape and validates
// it against the ParsedResume schema. The service usually answers with a
// one-element array containing the result object.
func decodeParsedResume(payload []byte) (*ParsedResume, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperrors.ExtractionServiceError{Message: "no data returned"}
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, validationError(err)
		}
		if len(items) == 0 {
			return nil, apperrors.ExtractionServiceError{Message: "no data returned"}
		}
		trimmed = bytes.TrimSpace(items[0])
	}

	var parsed ParsedResume
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, validationError(err)
	}
	return &parsed, nil
}

func validationError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.ExtractionValidationError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return apperrors.ExtractionValidationError{Message: err.Error()}
}
