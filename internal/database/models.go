package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResumeFile is one uploaded document owned by a single user. ParsedData is
// nil until an analysis run succeeds; analysis failures leave it untouched.
type ResumeFile struct {
	ID         uuid.UUID
	OwnerID    string
	ObjectKey  string
	FileName   string
	FileSize   int64
	FileType   string
	ParsedData json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Resume is the structured resume record, one row per owner.
type Resume struct {
	ID         uuid.UUID
	OwnerID    string
	Name       string
	Email      string
	Phone      string
	Location   string
	Skills     []string
	Experience json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
