package database

import (
	"context"
	"encoding/json"

	"github.com/lib/pq"
)

const upsertResume = `-- name: UpsertResume :one
INSERT INTO resumes (
owner_id, name, email, phone, location, skills, experience)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (owner_id)
DO UPDATE SET
    name = EXCLUDED.name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    location = EXCLUDED.location,
    skills = EXCLUDED.skills,
    experience = EXCLUDED.experience,
    updated_at = CURRENT_TIMESTAMP
RETURNING id, owner_id, name, email, phone, location, skills, experience, created_at, updated_at
`

type UpsertResumeParams struct {
	OwnerID    string
	Name       string
	Email      string
	Phone      string
	Location   string
	Skills     []string
	Experience json.RawMessage
}

func (q *Queries) UpsertResume(ctx context.Context, arg UpsertResumeParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, upsertResume,
		arg.OwnerID,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.Location,
		pq.Array(arg.Skills),
		arg.Experience,
	)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.Location,
		pq.Array(&i.Skills),
		&i.Experience,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getResumeByOwner = `-- name: GetResumeByOwner :one
SELECT id, owner_id, name, email, phone, location, skills, experience, created_at, updated_at FROM resumes WHERE owner_id=$1
`

func (q *Queries) GetResumeByOwner(ctx context.Context, ownerID string) (Resume, error) {
	row := q.db.QueryRowContext(ctx, getResumeByOwner, ownerID)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.Location,
		pq.Array(&i.Skills),
		&i.Experience,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
