package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
	"github.com/RioChndr/ai-resume-analyzer/internal/extractor"
	"github.com/RioChndr/ai-resume-analyzer/internal/storage"
	apperrors "github.com/RioChndr/ai-resume-analyzer/pkg/errors"
)

// fakeStore keeps objects in a map and derives keys the same way the real
// gateway does.
type fakeStore struct {
	objects    map[string][]byte
	deleteErr  error
	deleted    []string
	presigned  []string
	fetchCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) PresignUpload(ctx context.Context, fileName, fileType, ownerID string) (*storage.UploadCredential, error) {
	key := storage.ObjectKey(fileName, ownerID)
	f.presigned = append(f.presigned, key)
	return &storage.UploadCredential{UploadURL: "https://store.test/" + key, Key: key}, nil
}

func (f *fakeStore) PresignDownload(ctx context.Context, key string) (string, error) {
	return "https://store.test/read/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	f.fetchCalls++
	data, ok := f.objects[key]
	if !ok {
		return nil, apperrors.ErrStorageNotFound
	}
	return data, nil
}

type fakeExtractor struct {
	result *extractor.ParsedResume
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, document []byte) (*extractor.ParsedResume, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeRegistry is an in-memory stand-in for the sql-backed registry with the
// same owner-scoping contract.
type fakeRegistry struct {
	files   map[uuid.UUID]database.ResumeFile
	updates int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{files: map[uuid.UUID]database.ResumeFile{}}
}

func (f *fakeRegistry) CreateResumeFile(ctx context.Context, arg database.CreateResumeFileParams) (database.ResumeFile, error) {
	file := database.ResumeFile{
		ID:        uuid.New(),
		OwnerID:   arg.OwnerID,
		ObjectKey: arg.ObjectKey,
		FileName:  arg.FileName,
		FileSize:  arg.FileSize,
		FileType:  arg.FileType,
	}
	f.files[file.ID] = file
	return file, nil
}

func (f *fakeRegistry) GetResumeFilesByOwner(ctx context.Context, ownerID string) ([]database.ResumeFile, error) {
	var out []database.ResumeFile
	for _, file := range f.files {
		if file.OwnerID == ownerID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeRegistry) GetResumeFileForOwner(ctx context.Context, arg database.GetResumeFileForOwnerParams) (database.ResumeFile, error) {
	file, ok := f.files[arg.ID]
	if !ok || file.OwnerID != arg.OwnerID {
		return database.ResumeFile{}, sql.ErrNoRows
	}
	return file, nil
}

func (f *fakeRegistry) UpdateResumeFileParsedData(ctx context.Context, arg database.UpdateResumeFileParsedDataParams) error {
	file, ok := f.files[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	f.updates++
	file.ParsedData = arg.ParsedData
	f.files[arg.ID] = file
	return nil
}

func (f *fakeRegistry) DeleteResumeFile(ctx context.Context, id uuid.UUID) error {
	delete(f.files, id)
	return nil
}

func parsedWith(name string) *extractor.ParsedResume {
	return &extractor.ParsedResume{Name: &name}
}

func TestRequestUploadKeyShape(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeExtractor{}, newFakeRegistry(), nil)

	cred, err := svc.RequestUpload(context.Background(), "user-1", "cv.pdf", "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cred.Key, "user-1/"), "key must be owner-namespaced, got %q", cred.Key)
	assert.True(t, strings.HasSuffix(cred.Key, "cv.pdf"), "key must keep the file name, got %q", cred.Key)

	// Same inputs never collide.
	again, err := svc.RequestUpload(context.Background(), "user-1", "cv.pdf", "application/pdf")
	require.NoError(t, err)
	assert.NotEqual(t, cred.Key, again.Key)
}

func TestConfirmUploadAnalyzesInline(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	ext := &fakeExtractor{result: parsedWith("Rio Chandra")}
	svc := NewService(store, ext, registry, nil)

	cred, err := svc.RequestUpload(context.Background(), "user-1", "cv.pdf", "application/pdf")
	require.NoError(t, err)
	store.objects[cred.Key] = []byte("%PDF-1.4")

	file, err := svc.ConfirmUpload(context.Background(), "user-1", cred.Key, "cv.pdf", 12345, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "user-1", file.OwnerID)
	assert.Equal(t, "cv.pdf", file.FileName)
	assert.Equal(t, int64(12345), file.FileSize)
	assert.Equal(t, "application/pdf", file.FileType)

	require.NotEmpty(t, file.ParsedData)
	var parsed extractor.ParsedResume
	require.NoError(t, json.Unmarshal(file.ParsedData, &parsed))
	require.NotNil(t, parsed.Name)
	assert.Equal(t, "Rio Chandra", *parsed.Name)
	assert.Equal(t, 1, ext.calls)
}

func TestConfirmUploadKeepsRowWhenExtractionFails(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	ext := &fakeExtractor{err: apperrors.ExtractionServiceError{StatusCode: 503, Message: "unavailable"}}
	svc := NewService(store, ext, registry, nil)

	store.objects["user-1/abc_cv.pdf"] = []byte("%PDF-1.4")

	file, err := svc.ConfirmUpload(context.Background(), "user-1", "user-1/abc_cv.pdf", "cv.pdf", 99, "application/pdf")
	require.NoError(t, err, "upload success must not depend on analysis success")
	assert.Len(t, registry.files, 1)
	assert.Empty(t, file.ParsedData)
	assert.Empty(t, registry.files[file.ID].ParsedData)
}

func TestConfirmUploadKeepsRowWhenObjectMissing(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	svc := NewService(store, &fakeExtractor{result: parsedWith("x")}, registry, nil)

	file, err := svc.ConfirmUpload(context.Background(), "user-1", "user-1/gone_cv.pdf", "cv.pdf", 99, "application/pdf")
	require.NoError(t, err)
	assert.Len(t, registry.files, 1)
	assert.Empty(t, file.ParsedData)
}

func TestReanalyzeCrossOwnerIsNotFound(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	ext := &fakeExtractor{result: parsedWith("x")}
	svc := NewService(store, ext, registry, nil)

	owned, err := registry.CreateResumeFile(context.Background(), database.CreateResumeFileParams{
		OwnerID: "user-1", ObjectKey: "user-1/k_cv.pdf", FileName: "cv.pdf", FileSize: 1, FileType: "application/pdf",
	})
	require.NoError(t, err)

	parsed, err := svc.Reanalyze(context.Background(), "intruder", owned.ID)
	require.NoError(t, err)
	assert.Nil(t, parsed, "cross-owner lookup must look exactly like not found")
	assert.Zero(t, ext.calls)
	assert.Zero(t, store.fetchCalls)
	assert.Zero(t, registry.updates, "no mutation on unauthorized reanalyze")
}

func TestReanalyzeFailureLeavesStoredDataUntouched(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	ext := &fakeExtractor{result: parsedWith("before")}
	svc := NewService(store, ext, registry, nil)

	store.objects["user-1/k_cv.pdf"] = []byte("%PDF-1.4")
	file, err := svc.ConfirmUpload(context.Background(), "user-1", "user-1/k_cv.pdf", "cv.pdf", 1, "application/pdf")
	require.NoError(t, err)
	require.NotEmpty(t, file.ParsedData)

	ext.err = apperrors.ExtractionServiceError{StatusCode: 500, Message: "unexpected response status"}
	parsed, err := svc.Reanalyze(context.Background(), "user-1", file.ID)
	assert.Nil(t, parsed)

	var svcErr apperrors.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)

	assert.JSONEq(t, string(file.ParsedData), string(registry.files[file.ID].ParsedData),
		"failed reanalysis must not overwrite the stored result")
}

func TestReanalyzeUpdatesStoredData(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	ext := &fakeExtractor{result: parsedWith("before")}
	svc := NewService(store, ext, registry, nil)

	store.objects["user-1/k_cv.pdf"] = []byte("%PDF-1.4")
	file, err := svc.ConfirmUpload(context.Background(), "user-1", "user-1/k_cv.pdf", "cv.pdf", 1, "application/pdf")
	require.NoError(t, err)

	ext.result = parsedWith("after")
	parsed, err := svc.Reanalyze(context.Background(), "user-1", file.ID)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, "after", *parsed.Name)

	var stored extractor.ParsedResume
	require.NoError(t, json.Unmarshal(registry.files[file.ID].ParsedData, &stored))
	assert.Equal(t, "after", *stored.Name)
}

func TestDeleteFileIsIdempotent(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	svc := NewService(store, &fakeExtractor{}, registry, nil)

	store.objects["user-1/k_cv.pdf"] = []byte("%PDF-1.4")
	file, err := registry.CreateResumeFile(context.Background(), database.CreateResumeFileParams{
		OwnerID: "user-1", ObjectKey: "user-1/k_cv.pdf", FileName: "cv.pdf", FileSize: 1, FileType: "application/pdf",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteFile(context.Background(), "user-1", file.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, registry.files)
	assert.Equal(t, []string{"user-1/k_cv.pdf"}, store.deleted)

	deleted, err = svc.DeleteFile(context.Background(), "user-1", file.ID)
	require.NoError(t, err, "second delete must not error")
	assert.False(t, deleted)
}

func TestDeleteFileProceedsPastStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = apperrors.NewStorageError("delete", errors.New("backend unreachable"))
	registry := newFakeRegistry()
	svc := NewService(store, &fakeExtractor{}, registry, nil)

	file, err := registry.CreateResumeFile(context.Background(), database.CreateResumeFileParams{
		OwnerID: "user-1", ObjectKey: "user-1/k_cv.pdf", FileName: "cv.pdf", FileSize: 1, FileType: "application/pdf",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteFile(context.Background(), "user-1", file.ID)
	require.NoError(t, err, "object store failure must not block metadata deletion")
	assert.True(t, deleted)
	assert.Empty(t, registry.files)
}

func TestDeleteFileCrossOwnerIsNoOp(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	svc := NewService(store, &fakeExtractor{}, registry, nil)

	file, err := registry.CreateResumeFile(context.Background(), database.CreateResumeFileParams{
		OwnerID: "user-1", ObjectKey: "user-1/k_cv.pdf", FileName: "cv.pdf", FileSize: 1, FileType: "application/pdf",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteFile(context.Background(), "intruder", file.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, registry.files, 1)
}

func TestGetFileURLScopedToOwner(t *testing.T) {
	store := newFakeStore()
	registry := newFakeRegistry()
	svc := NewService(store, &fakeExtractor{}, registry, nil)

	file, err := registry.CreateResumeFile(context.Background(), database.CreateResumeFileParams{
		OwnerID: "user-1", ObjectKey: "user-1/k_cv.pdf", FileName: "cv.pdf", FileSize: 1, FileType: "application/pdf",
	})
	require.NoError(t, err)

	fileURL, err := svc.GetFileURL(context.Background(), "user-1", file.ID)
	require.NoError(t, err)
	require.NotNil(t, fileURL)
	assert.Equal(t, "cv.pdf", fileURL.FileName)
	assert.Contains(t, fileURL.PresignedURL, "user-1/k_cv.pdf")

	fileURL, err = svc.GetFileURL(context.Background(), "intruder", file.ID)
	require.NoError(t, err)
	assert.Nil(t, fileURL)
}
