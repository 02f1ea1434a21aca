package repository

import (
	"context"
	"time"

	"fileapi/internal/model"
)

// FileRepository defines persistence for file metadata rows.
// No business logic here, strictly persistence operations.
type FileRepository interface {
	// Save inserts the record when ID is empty (assigning a new ID) and updates it otherwise.
	// Zero CreatedAt/UpdatedAt are filled with the current time; non-zero values are stored as given.
	// Returns the stored record.
	Save(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error)

	// GetByID returns the record or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.FileRecord, error)

	// FindByID returns the record, or nil with a nil error when it does not exist.
	FindByID(ctx context.Context, id string) (*model.FileRecord, error)

	// Filter returns one page of records matching f and the total number of matches.
	Filter(ctx context.Context, f FileFilter, pq PageQuery) (*PageResult[model.FileRecord], error)
}

// FileFilter is the predicate set for Filter. Zero values are not applied.
// Soft-deleted rows are always excluded.
type FileFilter struct {
	Name           string
	Ext            string
	OwnerID        string
	FolderID       string
	UpdatedFrom    *time.Time
	UpdatedTo      *time.Time
	// SortOrder is "asc" or "desc" on updated_at; anything else means desc.
	SortOrder string
}
