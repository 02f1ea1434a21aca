package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"fileapi/internal/model"
	"fileapi/internal/service"
	"fileapi/internal/storage"
)

type MockFileService struct {
	mock.Mock
}

var _ service.FileService = (*MockFileService)(nil)

func (m *MockFileService) Create(ctx context.Context, req *model.FileDTO) (*model.FileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileResponse), args.Error(1)
}

func (m *MockFileService) Update(ctx context.Context, id string, req *model.FileDTO) (*model.FileResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileResponse), args.Error(1)
}

func (m *MockFileService) Filter(ctx context.Context, req *model.FileFilterRequest) (*model.FileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileResponse), args.Error(1)
}

func (m *MockFileService) SetDeletedStatus(ctx context.Context, id string) (*model.FileResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileResponse), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.FileResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileResponse), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
