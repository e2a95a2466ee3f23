package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/RioChndr/ai-resume-analyzer/internal/config"
	apperrors "github.com/RioChndr/ai-resume-analyzer/pkg/errors"
)

const (
	// Upload credentials accept a single PUT within this window.
	uploadURLTTL = 5 * time.Minute
	readURLTTL   = time.Hour
)

// UploadCredential is an ephemeral write grant for one new object. It is
// never persisted; the registry row appears only after the client confirms
// the upload went through.
type UploadCredential struct {
	UploadURL string
	Key       string
}

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Store(ctx context.Context, cfg *config.S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, apperrors.NewStorageError("configure", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Path-style addressing is needed for MinIO and R2-like backends.
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// PresignUpload issues a write credential for a fresh, owner-namespaced key.
// The URL only accepts a PUT with Content-Type equal to fileType.
func (s *S3Store) PresignUpload(ctx context.Context, fileName, fileType, ownerID string) (*UploadCredential, error) {
	key := ObjectKey(fileName, ownerID)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return nil, apperrors.NewStorageError("presign upload", err)
	}

	return &UploadCredential{UploadURL: req.URL, Key: key}, nil
}

// PresignDownload issues a read-only URL for an existing key, valid for one hour.
func (s *S3Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(readURLTTL))
	if err != nil {
		return "", apperrors.NewStorageError("presign download", err)
	}
	return req.URL, nil
}

// Delete removes the object. Callers treat failures as non-fatal: keys are
// never reused, so an orphaned object is acceptable garbage.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.NewStorageError("delete", err)
	}
	return nil
}

// Fetch buffers the whole object into memory.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, apperrors.ErrStorageNotFound
		}
		return nil, apperrors.NewStorageError("get object", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, apperrors.NewStorageError("read object body", err)
	}
	return buf.Bytes(), nil
}
