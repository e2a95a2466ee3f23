package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createResumeFile = `-- name: CreateResumeFile :one
INSERT INTO resume_files (
owner_id, object_key, file_name, file_size, file_type)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, object_key, file_name, file_size, file_type, parsed_data, created_at, updated_at
`

type CreateResumeFileParams struct {
	OwnerID   string
	ObjectKey string
	FileName  string
	FileSize  int64
	FileType  string
}

func (q *Queries) CreateResumeFile(ctx context.Context, arg CreateResumeFileParams) (ResumeFile, error) {
	row := q.db.QueryRowContext(ctx, createResumeFile,
		arg.OwnerID,
		arg.ObjectKey,
		arg.FileName,
		arg.FileSize,
		arg.FileType,
	)
	var i ResumeFile
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.ObjectKey,
		&i.FileName,
		&i.FileSize,
		&i.FileType,
		&i.ParsedData,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getResumeFilesByOwner = `-- name: GetResumeFilesByOwner :many
SELECT id, owner_id, object_key, file_name, file_size, file_type, parsed_data, created_at, updated_at FROM resume_files WHERE owner_id=$1 ORDER BY created_at
`

func (q *Queries) GetResumeFilesByOwner(ctx context.Context, ownerID string) ([]ResumeFile, error) {
	rows, err := q.db.QueryContext(ctx, getResumeFilesByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ResumeFile
	for rows.Next() {
		var i ResumeFile
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.ObjectKey,
			&i.FileName,
			&i.FileSize,
			&i.FileType,
			&i.ParsedData,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getResumeFileForOwner = `-- name: GetResumeFileForOwner :one
SELECT id, owner_id, object_key, file_name, file_size, file_type, parsed_data, created_at, updated_at FROM resume_files WHERE id=$1 AND owner_id=$2
`

type GetResumeFileForOwnerParams struct {
	ID      uuid.UUID
	OwnerID string
}

// A row belonging to another owner resolves as sql.ErrNoRows, exactly like a
// missing row. Callers must not leak the difference.
func (q *Queries) GetResumeFileForOwner(ctx context.Context, arg GetResumeFileForOwnerParams) (ResumeFile, error) {
	row := q.db.QueryRowContext(ctx, getResumeFileForOwner, arg.ID, arg.OwnerID)
	var i ResumeFile
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.ObjectKey,
		&i.FileName,
		&i.FileSize,
		&i.FileType,
		&i.ParsedData,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateResumeFileParsedData = `-- name: UpdateResumeFileParsedData :exec
UPDATE resume_files
SET parsed_data=$1,
    updated_at=CURRENT_TIMESTAMP
WHERE id=$2
`

type UpdateResumeFileParsedDataParams struct {
	ParsedData json.RawMessage
	ID         uuid.UUID
}

func (q *Queries) UpdateResumeFileParsedData(ctx context.Context, arg UpdateResumeFileParsedDataParams) error {
	_, err := q.db.ExecContext(ctx, updateResumeFileParsedData, arg.ParsedData, arg.ID)
	return err
}

const deleteResumeFile = `-- name: DeleteResumeFile :exec
DELETE FROM resume_files WHERE id=$1
`

func (q *Queries) DeleteResumeFile(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteResumeFile, id)
	return err
}
