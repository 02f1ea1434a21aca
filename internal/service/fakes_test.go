package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"fileapi/internal/mapper"
	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

// fakeRepo is an in-memory FileRepository that records every call.
type fakeRepo struct {
	rows map[string]*model.FileRecord

	saved       []model.FileRecord
	getCalls    int
	findCalls   int
	filterCalls []repository.FileFilter
	pageQueries []repository.PageQuery

	filterResult *repository.PageResult[model.FileRecord]
	saveErr      error
	getErr       error
	filterErr    error
}

func newFakeRepo(rows ...*model.FileRecord) *fakeRepo {
	r := &fakeRepo{rows: map[string]*model.FileRecord{}}
	for _, rec := range rows {
		r.rows[rec.ID] = rec
	}
	return r
}

func (r *fakeRepo) Save(_ context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	r.saved = append(r.saved, *rec)
	r.rows[rec.ID] = rec
	return rec, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*model.FileRecord, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	rec, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.FileRecord, error) {
	r.findCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.rows[id], nil
}

func (r *fakeRepo) Filter(_ context.Context, f repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.FileRecord], error) {
	r.filterCalls = append(r.filterCalls, f)
	r.pageQueries = append(r.pageQueries, pq)
	if r.filterErr != nil {
		return nil, r.filterErr
	}
	if r.filterResult == nil {
		return &repository.PageResult[model.FileRecord]{Items: []model.FileRecord{}}, nil
	}
	return r.filterResult, nil
}

type putCall struct {
	bucket string
	key    string
	data   string
	opt    storage.PutObjectOptions
}

// fakeStore is an in-memory Storage that records Put calls.
type fakeStore struct {
	puts    []putCall
	gets    int
	objects map[string]string
	putErr  error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.puts = append(s.puts, putCall{bucket: bucket, key: key, data: string(b), opt: opt})
	if s.putErr != nil {
		return storage.ObjectInfo{}, s.putErr
	}
	s.objects[bucket+"/"+key] = string(b)
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(b)), ContentType: opt.ContentType}, nil
}

func (s *fakeStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.gets++
	if s.getErr != nil {
		return nil, storage.ObjectInfo{}, s.getErr
	}
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(data)), storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

// countingMapper delegates to the real mapper and remembers what it translated.
type countingMapper struct {
	inner mapper.FileMapper
	seen  []string
}

func newCountingMapper() *countingMapper {
	return &countingMapper{inner: mapper.NewFileMapper()}
}

func (m *countingMapper) ToDTO(rec *model.FileRecord) model.FileDTO {
	m.seen = append(m.seen, rec.ID)
	return m.inner.ToDTO(rec)
}
