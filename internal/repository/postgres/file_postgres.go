package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

const fileColumns = `id, file_name, ext, owner_id, folder_id, is_deleted, created_at, updated_at`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*model.FileRecord, error) {
	var (
		f        model.FileRecord
		ownerID  sql.NullString
		folderID sql.NullString
	)
	if err := row.Scan(
		&f.ID,
		&f.FileName,
		&f.Ext,
		&ownerID,
		&folderID,
		&f.IsDeleted,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.OwnerID = ownerID.String
	f.FolderID = folderID.String
	return &f, nil
}

// nullable maps an empty optional reference to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Save inserts a new row when rec.ID is empty, otherwise updates the existing row.
func (r *FilePostgres) Save(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	if rec == nil {
		return nil, errors.New("nil file record")
	}
	now := r.now()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		return r.insert(ctx, rec)
	}
	return r.update(ctx, rec)
}

func (r *FilePostgres) insert(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	q := `
		INSERT INTO files (id, file_name, ext, owner_id, folder_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.FileName,
		rec.Ext,
		nullable(rec.OwnerID),
		nullable(rec.FolderID),
		rec.IsDeleted,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return out, nil
}

func (r *FilePostgres) update(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	q := `
		UPDATE files
		SET file_name = $2, ext = $3, owner_id = $4, folder_id = $5, is_deleted = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.FileName,
		rec.Ext,
		nullable(rec.OwnerID),
		nullable(rec.FolderID),
		rec.IsDeleted,
		rec.UpdatedAt,
	)
	out, err := scanFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update file: %w", err)
	}
	return out, nil
}

// GetByID fetches a single file by its ID, soft-deleted rows included.
func (r *FilePostgres) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	rec, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

// FindByID fetches a single file by its ID, returning nil when absent.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.FileRecord, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	rec, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return rec, nil
}

// Filter returns files matching f using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) Filter(ctx context.Context, f repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.FileRecord], error) {
	where, args := buildFilterWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	n := len(args) + 1
	qList := fmt.Sprintf(`SELECT %s FROM files %s %s LIMIT $%d OFFSET $%d`,
		fileColumns, where, buildOrderBy(f.SortOrder), n, n+1)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("filter files: %w", err)
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.FileRecord]{
		Items: items,
		Total: total,
	}, nil
}

// buildFilterWhere renders the WHERE clause for f with positional arguments starting at $1.
func buildFilterWhere(f repository.FileFilter) (string, []any) {
	conditions := []string{"is_deleted = FALSE"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.Name != "" {
		add("file_name ILIKE $%d", "%"+f.Name+"%")
	}
	if f.Ext != "" {
		add("LOWER(ext) = LOWER($%d)", f.Ext)
	}
	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.FolderID != "" {
		add("folder_id = $%d", f.FolderID)
	}
	if f.UpdatedFrom != nil {
		add("updated_at >= $%d", *f.UpdatedFrom)
	}
	if f.UpdatedTo != nil {
		add("updated_at <= $%d", *f.UpdatedTo)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func buildOrderBy(sortOrder string) string {
	if strings.EqualFold(sortOrder, "asc") {
		return "ORDER BY updated_at ASC, id ASC"
	}
	return "ORDER BY updated_at DESC, id DESC"
}
