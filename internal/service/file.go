package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fileapi/internal/mapper"
	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrNotFound    = errors.New("file not found")
	ErrNoData      = errors.New("file has no data")
	ErrInvalidPage = errors.New("page number out of range")
)

// MsgAlreadyDeleted is returned when a soft delete targets a file that is already deleted.
const MsgAlreadyDeleted = "File is already marked for deletion"

const (
	DefaultPageSize = 10
	MaxPageSize     = 256

	// maxOffset bounds page*size so the row offset never overflows.
	maxOffset = math.MaxInt32
)

var tracer = otel.Tracer("fileapi/internal/service")

// Config carries the service's static settings.
type Config struct {
	// Bucket receives file payloads, one object per file keyed by file ID.
	Bucket string
}

// FileService defines the file lifecycle use cases.
//
// Metadata rows and payload objects are written in sequence, not atomically: the row is
// saved first (its ID is the object key) and a failed payload write is returned to the
// caller without undoing the row.
type FileService interface {
	// Create saves a new file record and, when the request carries data, writes it to the bucket.
	Create(ctx context.Context, req *model.FileDTO) (*model.FileResponse, error)

	// Update overwrites the non-empty descriptive fields of a live file and replaces its
	// payload when the request carries data.
	Update(ctx context.Context, id string, req *model.FileDTO) (*model.FileResponse, error)

	// Filter returns one page of files matching the request.
	Filter(ctx context.Context, req *model.FileFilterRequest) (*model.FileResponse, error)

	// SetDeletedStatus soft-deletes a file. Deleting an already deleted file writes nothing
	// and reports MsgAlreadyDeleted.
	SetDeletedStatus(ctx context.Context, id string) (*model.FileResponse, error)

	// Get returns a single live file.
	Get(ctx context.Context, id string) (*model.FileResponse, error)

	// Download streams the payload of a live file. The caller must close the reader.
	Download(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store  storage.Storage
	repo   repository.FileRepository
	mapper mapper.FileMapper
	bucket string
	logger *slog.Logger
	now    func() time.Time
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, m mapper.FileMapper, cfg Config) FileService {
	return &fileService{
		store:  store,
		repo:   repo,
		mapper: m,
		bucket: cfg.Bucket,
		logger: slog.Default().With(slog.String("component", "file_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *fileService) Create(ctx context.Context, req *model.FileDTO) (*model.FileResponse, error) {
	ctx, span := tracer.Start(ctx, "FileService.Create")
	defer span.End()

	if req == nil {
		req = &model.FileDTO{}
	}
	now := s.now()
	rec := &model.FileRecord{
		FileName:  req.FileName,
		Ext:       req.Ext,
		OwnerID:   req.OwnerID,
		FolderID:  req.FolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The row goes first: its generated ID is the object key.
	stored, err := s.repo.Save(ctx, rec)
	if err != nil {
		return nil, fail(span, fmt.Errorf("save file: %w", err))
	}
	span.SetAttributes(attribute.String("file.id", stored.ID))

	if req.HasData() {
		if err := s.putData(ctx, "create", stored, *req.FileData); err != nil {
			return nil, fail(span, err)
		}
	}

	return s.respond(stored), nil
}

func (s *fileService) Update(ctx context.Context, id string, req *model.FileDTO) (*model.FileResponse, error) {
	ctx, span := tracer.Start(ctx, "FileService.Update", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	rec, err := s.live(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if req == nil {
		req = &model.FileDTO{}
	}

	if req.FileName != "" {
		rec.FileName = req.FileName
	}
	if req.Ext != "" {
		rec.Ext = req.Ext
	}
	if req.OwnerID != "" {
		rec.OwnerID = req.OwnerID
	}
	if req.FolderID != "" {
		rec.FolderID = req.FolderID
	}
	rec.UpdatedAt = s.now()

	stored, err := s.repo.Save(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(span, ErrNotFound)
		}
		return nil, fail(span, fmt.Errorf("save file: %w", err))
	}

	if req.HasData() {
		if err := s.putData(ctx, "update", stored, *req.FileData); err != nil {
			return nil, fail(span, err)
		}
	}

	return s.respond(stored), nil
}

func (s *fileService) Filter(ctx context.Context, req *model.FileFilterRequest) (*model.FileResponse, error) {
	ctx, span := tracer.Start(ctx, "FileService.Filter")
	defer span.End()

	if req == nil {
		req = &model.FileFilterRequest{}
	}
	page, size, err := normalizePage(req.Paginating)
	if err != nil {
		return nil, fail(span, err)
	}

	res, err := s.repo.Filter(ctx, repository.FileFilter{
		Name:           req.Name,
		Ext:            req.Ext,
		OwnerID:        req.OwnerID,
		FolderID:       req.FolderID,
		UpdatedFrom:    req.UpdatedFrom,
		UpdatedTo:      req.UpdatedTo,
		SortOrder:      req.SortOrder,
	}, repository.PageQuery{Limit: size, Offset: page * size})
	if err != nil {
		return nil, fail(span, fmt.Errorf("filter files: %w", err))
	}

	items := make([]model.FileDTO, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, s.mapper.ToDTO(&res.Items[i]))
	}
	span.SetAttributes(attribute.Int("files.count", len(items)), attribute.Int("files.total", res.Total))

	return &model.FileResponse{
		Success:      true,
		FileObjPages: items,
		Page: &model.PageInfo{
			Total:      res.Total,
			PageNumber: page,
			PageSize:   size,
		},
	}, nil
}

func (s *fileService) SetDeletedStatus(ctx context.Context, id string) (*model.FileResponse, error) {
	ctx, span := tracer.Start(ctx, "FileService.SetDeletedStatus", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	if id == "" {
		return nil, fail(span, ErrIDRequired)
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("find file: %w", err))
	}
	if rec == nil {
		return nil, fail(span, ErrNotFound)
	}

	if rec.IsDeleted {
		s.logger.DebugContext(ctx, "file_already_deleted", slog.String("file_id", id))
		return &model.FileResponse{Success: true, Message: MsgAlreadyDeleted}, nil
	}

	rec.IsDeleted = true
	rec.UpdatedAt = s.now()
	if _, err := s.repo.Save(ctx, rec); err != nil {
		return nil, fail(span, fmt.Errorf("save file: %w", err))
	}
	return &model.FileResponse{Success: true}, nil
}

func (s *fileService) Get(ctx context.Context, id string) (*model.FileResponse, error) {
	ctx, span := tracer.Start(ctx, "FileService.Get", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	rec, err := s.live(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return s.respond(rec), nil
}

func (s *fileService) Download(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	ctx, span := tracer.Start(ctx, "FileService.Download", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	rec, err := s.live(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, fail(span, err)
	}
	rc, info, err := s.store.Get(ctx, s.bucket, rec.ID)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, fail(span, ErrNoData)
		}
		return nil, storage.ObjectInfo{}, fail(span, fmt.Errorf("get blob: %w", err))
	}
	return rc, info, nil
}

// live loads a file that has not been soft-deleted.
func (s *fileService) live(ctx context.Context, id string) (*model.FileRecord, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	if rec.IsDeleted {
		return nil, ErrNotFound
	}
	return rec, nil
}

// putData writes the payload under the record's ID. The metadata row is already committed
// at this point and is left in place when the write fails.
func (s *fileService) putData(ctx context.Context, op string, rec *model.FileRecord, data string) error {
	_, err := s.store.Put(ctx, s.bucket, rec.ID, strings.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType(rec.Ext),
		Metadata: map[string]string{
			"file-name": rec.FileName,
		},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "blob_write_failed",
			slog.String("op", op),
			slog.String("file_id", rec.ID),
			slog.String("bucket", s.bucket),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("put blob: %w", err)
	}
	return nil
}

func (s *fileService) respond(rec *model.FileRecord) *model.FileResponse {
	return &model.FileResponse{
		Success:      true,
		FileObjPages: []model.FileDTO{s.mapper.ToDTO(rec)},
	}
}

func normalizePage(p model.Paginating) (page, size int, err error) {
	page, size = p.PageNumber, p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 0 {
		page = 0
	}
	if page > maxOffset/size {
		return 0, 0, ErrInvalidPage
	}
	return page, size, nil
}

func contentType(ext string) string {
	if ext != "" {
		if ct := mime.TypeByExtension("." + strings.TrimPrefix(ext, ".")); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
