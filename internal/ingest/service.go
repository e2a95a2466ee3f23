package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
	"github.com/RioChndr/ai-resume-analyzer/internal/extractor"
	"github.com/RioChndr/ai-resume-analyzer/internal/logger"
	"github.com/RioChndr/ai-resume-analyzer/internal/storage"
)

// ObjectStore is the slice of the object store gateway the pipeline needs.
type ObjectStore interface {
	PresignUpload(ctx context.Context, fileName, fileType, ownerID string) (*storage.UploadCredential, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type Extractor interface {
	Extract(ctx context.Context, document []byte) (*extractor.ParsedResume, error)
}

// Registry persists resume file metadata, scoped to the owning user.
type Registry interface {
	CreateResumeFile(ctx context.Context, arg database.CreateResumeFileParams) (database.ResumeFile, error)
	GetResumeFilesByOwner(ctx context.Context, ownerID string) ([]database.ResumeFile, error)
	GetResumeFileForOwner(ctx context.Context, arg database.GetResumeFileForOwnerParams) (database.ResumeFile, error)
	UpdateResumeFileParsedData(ctx context.Context, arg database.UpdateResumeFileParsedDataParams) error
	DeleteResumeFile(ctx context.Context, id uuid.UUID) error
}

// FileURL is the owner-facing read credential for a stored file.
type FileURL struct {
	PresignedURL string
	FileName     string
}

// Service coordinates the upload/analyze/delete pipeline across the object
// store, the registry and the extraction service. All collaborators are
// injected so tests can substitute fakes.
type Service struct {
	store      ObjectStore
	extractor  Extractor
	registry   Registry
	dispatcher Dispatcher
	log        zerolog.Logger
}

// NewService wires the pipeline. A nil dispatcher means analysis runs inline,
// best-effort, inside ConfirmUpload.
func NewService(store ObjectStore, ext Extractor, registry Registry, dispatcher Dispatcher) *Service {
	s := &Service{
		store:     store,
		extractor: ext,
		registry:  registry,
		log:       logger.Get(),
	}
	if dispatcher == nil {
		dispatcher = inlineDispatcher{svc: s}
	}
	s.dispatcher = dispatcher
	return s
}

// RequestUpload issues a time-boxed write credential. No registry row exists
// yet: uploads that never finish must not leave orphan rows behind.
func (s *Service) RequestUpload(ctx context.Context, ownerID, fileName, fileType string) (*storage.UploadCredential, error) {
	return s.store.PresignUpload(ctx, fileName, fileType, ownerID)
}

// ConfirmUpload registers a completed upload and hands the new file to the
// analysis dispatcher. Upload success never depends on analysis success: a
// failed dispatch is logged and the registered row returned with parsed_data
// absent.
func (s *Service) ConfirmUpload(ctx context.Context, ownerID, objectKey, fileName string, fileSize int64, fileType string) (database.ResumeFile, error) {
	file, err := s.registry.CreateResumeFile(ctx, database.CreateResumeFileParams{
		OwnerID:   ownerID,
		ObjectKey: objectKey,
		FileName:  fileName,
		FileSize:  fileSize,
		FileType:  fileType,
	})
	if err != nil {
		return database.ResumeFile{}, fmt.Errorf("failed to register upload: %w", err)
	}

	s.log.Info().
		Str("file_id", file.ID.String()).
		Str("owner_id", ownerID).
		Str("object_key", objectKey).
		Msg("upload registered")

	if err := s.dispatcher.Dispatch(ctx, file); err != nil {
		s.log.Error().Err(err).
			Str("file_id", file.ID.String()).
			Str("object_key", objectKey).
			Msg("analysis dispatch failed, keeping registered file")
		return file, nil
	}

	// Inline dispatch may have populated parsed_data already.
	refreshed, err := s.registry.GetResumeFileForOwner(ctx, database.GetResumeFileForOwnerParams{ID: file.ID, OwnerID: ownerID})
	if err != nil {
		return file, nil
	}
	return refreshed, nil
}

// Analyze fetches the stored object, runs extraction and persists the result.
// The previously stored parsed_data is left untouched when any step fails.
func (s *Service) Analyze(ctx context.Context, file database.ResumeFile) (*extractor.ParsedResume, error) {
	document, err := s.store.Fetch(ctx, file.ObjectKey)
	if err != nil {
		return nil, err
	}

	parsed, err := s.extractor.Extract(ctx, document)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parsed resume: %w", err)
	}

	if err := s.registry.UpdateResumeFileParsedData(ctx, database.UpdateResumeFileParsedDataParams{
		ParsedData: raw,
		ID:         file.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to save parsed resume: %w", err)
	}

	return parsed, nil
}

// Reanalyze re-runs extraction for an owner's file and returns the new result.
// A missing id and a cross-owner id both come back as (nil, nil); extraction
// failures are surfaced to the caller, unlike the inline upload path.
func (s *Service) Reanalyze(ctx context.Context, ownerID string, fileID uuid.UUID) (*extractor.ParsedResume, error) {
	file, err := s.registry.GetResumeFileForOwner(ctx, database.GetResumeFileForOwnerParams{ID: fileID, OwnerID: ownerID})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	parsed, err := s.Analyze(ctx, file)
	if err != nil {
		s.log.Error().Err(err).Str("file_id", fileID.String()).Msg("reanalysis failed")
		return nil, err
	}
	return parsed, nil
}

// DeleteFile removes the object and the registry row. The object delete is
// best-effort: a storage failure never blocks metadata deletion, since keys
// are never reused and an orphaned object is acceptable garbage. The first
// return value reports whether a row existed, keeping deletion idempotent.
func (s *Service) DeleteFile(ctx context.Context, ownerID string, fileID uuid.UUID) (bool, error) {
	file, err := s.registry.GetResumeFileForOwner(ctx, database.GetResumeFileForOwnerParams{ID: fileID, OwnerID: ownerID})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.store.Delete(ctx, file.ObjectKey); err != nil {
		s.log.Warn().Err(err).
			Str("file_id", fileID.String()).
			Str("object_key", file.ObjectKey).
			Msg("object delete failed, removing metadata anyway")
	}

	if err := s.registry.DeleteResumeFile(ctx, file.ID); err != nil {
		return false, fmt.Errorf("failed to delete registry row: %w", err)
	}
	return true, nil
}

// ListFiles is a pure read-through to the registry.
func (s *Service) ListFiles(ctx context.Context, ownerID string) ([]database.ResumeFile, error) {
	return s.registry.GetResumeFilesByOwner(ctx, ownerID)
}

// GetFileURL returns a short-lived read URL for an owner's file, or nil when
// the id does not resolve for this owner.
func (s *Service) GetFileURL(ctx context.Context, ownerID string, fileID uuid.UUID) (*FileURL, error) {
	file, err := s.registry.GetResumeFileForOwner(ctx, database.GetResumeFileForOwnerParams{ID: fileID, OwnerID: ownerID})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignDownload(ctx, file.ObjectKey)
	if err != nil {
		return nil, err
	}
	return &FileURL{PresignedURL: url, FileName: file.FileName}, nil
}
