package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

var columns = []string{"id", "file_name", "ext", "owner_id", "folder_id", "is_deleted", "created_at", "updated_at"}

func newRepo(t *testing.T) (*FilePostgres, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	repo := NewFilePostgres(db)
	repo.now = func() time.Time { return now }
	return repo, mock, now
}

func TestFilePostgres_SaveInsert(t *testing.T) {
	repo, mock, now := newRepo(t)
	ctx := context.Background()

	rec := &model.FileRecord{FileName: "report", Ext: "pdf", OwnerID: "owner-1"}

	mock.ExpectQuery("INSERT INTO files").
		WithArgs(sqlmock.AnyArg(), "report", "pdf", "owner-1", nil, false, now, now).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("gen-id", "report", "pdf", "owner-1", nil, false, now, now))

	out, err := repo.Save(ctx, rec)

	require.NoError(t, err)
	assert.Equal(t, "gen-id", out.ID)
	assert.Equal(t, "owner-1", out.OwnerID)
	assert.Empty(t, out.FolderID)
	assert.NotEmpty(t, rec.ID, "id is assigned on the input record before insert")
	assert.Equal(t, now, out.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_SaveUpdate(t *testing.T) {
	repo, mock, now := newRepo(t)
	ctx := context.Background()

	created := now.Add(-time.Hour)
	updated := now.Add(time.Minute)

	t.Run("found", func(t *testing.T) {
		rec := &model.FileRecord{ID: "file-1", FileName: "new", Ext: "py", IsDeleted: true, CreatedAt: created, UpdatedAt: updated}

		mock.ExpectQuery("UPDATE files SET (.+) WHERE id = \\$1").
			WithArgs("file-1", "new", "py", nil, nil, true, updated).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("file-1", "new", "py", nil, nil, true, created, updated))

		out, err := repo.Save(ctx, rec)

		require.NoError(t, err)
		assert.Equal(t, "new", out.FileName)
		assert.True(t, out.IsDeleted)
		assert.Equal(t, updated, out.UpdatedAt)
	})

	t.Run("missing row", func(t *testing.T) {
		rec := &model.FileRecord{ID: "missing", UpdatedAt: updated}

		mock.ExpectQuery("UPDATE files").
			WithArgs("missing", "", "", nil, nil, false, updated).
			WillReturnError(sql.ErrNoRows)

		out, err := repo.Save(ctx, rec)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_SaveNil(t *testing.T) {
	repo, _, _ := newRepo(t)
	_, err := repo.Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestFilePostgres_GetAndFindByID(t *testing.T) {
	repo, mock, now := newRepo(t)
	ctx := context.Background()
	q := regexp.QuoteMeta("FROM files WHERE id = $1")

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("file-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("file-1", "a", "txt", nil, "folder-1", false, now, now))

		rec, err := repo.GetByID(ctx, "file-1")

		require.NoError(t, err)
		assert.Equal(t, "file-1", rec.ID)
		assert.Equal(t, "folder-1", rec.FolderID)
	})

	t.Run("get missing", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		rec, err := repo.GetByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, rec)
	})

	t.Run("find missing", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		rec, err := repo.FindByID(ctx, "missing")

		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("driver error", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("file-1").WillReturnError(errors.New("conn reset"))

		rec, err := repo.FindByID(ctx, "file-1")

		assert.ErrorContains(t, err, "find file: conn reset")
		assert.Nil(t, rec)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Filter(t *testing.T) {
	repo, mock, now := newRepo(t)
	ctx := context.Background()

	t.Run("defaults exclude deleted", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM files WHERE is_deleted = FALSE")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta("FROM files WHERE is_deleted = FALSE ORDER BY updated_at DESC, id DESC LIMIT $1 OFFSET $2")).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("b", "b", "txt", nil, nil, false, now, now).
				AddRow("a", "a", "txt", nil, nil, false, now, now))

		res, err := repo.Filter(ctx, repository.FileFilter{}, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "b", res.Items[0].ID)
		assert.Equal(t, "a", res.Items[1].ID)
	})

	t.Run("all predicates", func(t *testing.T) {
		from := now.Add(-24 * time.Hour)
		to := now
		f := repository.FileFilter{
			Name:        "rep",
			Ext:         "PDF",
			OwnerID:     "owner-1",
			FolderID:    "folder-1",
			UpdatedFrom: &from,
			UpdatedTo:   &to,
			SortOrder:   "asc",
		}

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM files WHERE is_deleted = FALSE AND file_name ILIKE $1")).
			WithArgs("%rep%", "PDF", "owner-1", "folder-1", from, to).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE is_deleted = FALSE AND file_name ILIKE $1 AND LOWER(ext) = LOWER($2) AND owner_id = $3 AND folder_id = $4 AND updated_at >= $5 AND updated_at <= $6 ORDER BY updated_at ASC, id ASC LIMIT $7 OFFSET $8")).
			WithArgs("%rep%", "PDF", "owner-1", "folder-1", from, to, 5, 15).
			WillReturnRows(sqlmock.NewRows(columns))

		res, err := repo.Filter(ctx, f, repository.PageQuery{Limit: 5, Offset: 15})

		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))

		res, err := repo.Filter(ctx, repository.FileFilter{}, repository.PageQuery{Limit: 10})

		assert.ErrorContains(t, err, "count files: boom")
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildFilterWhere(t *testing.T) {
	t.Run("no predicates still excludes deleted", func(t *testing.T) {
		where, args := buildFilterWhere(repository.FileFilter{})
		assert.Equal(t, "WHERE is_deleted = FALSE", where)
		assert.Empty(t, args)
	})

	t.Run("every predicate keeps the deleted exclusion first", func(t *testing.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		where, args := buildFilterWhere(repository.FileFilter{
			Name:        "a",
			Ext:         "b",
			OwnerID:     "c",
			FolderID:    "d",
			UpdatedFrom: &from,
			UpdatedTo:   &from,
		})
		assert.True(t, strings.HasPrefix(where, "WHERE is_deleted = FALSE AND "))
		assert.Equal(t, 1, strings.Count(where, "is_deleted"))
		assert.Len(t, args, 6)
	})

	t.Run("numbering follows applied predicates", func(t *testing.T) {
		where, args := buildFilterWhere(repository.FileFilter{Ext: "txt", FolderID: "f"})
		assert.Equal(t, "WHERE is_deleted = FALSE AND LOWER(ext) = LOWER($1) AND folder_id = $2", where)
		assert.Equal(t, []any{"txt", "f"}, args)
	})
}

func TestBuildOrderBy(t *testing.T) {
	assert.Equal(t, "ORDER BY updated_at ASC, id ASC", buildOrderBy("ASC"))
	assert.Equal(t, "ORDER BY updated_at DESC, id DESC", buildOrderBy(""))
	assert.Equal(t, "ORDER BY updated_at DESC, id DESC", buildOrderBy("; DROP TABLE files"))
}
