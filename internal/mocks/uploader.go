package mocks

import (
	"context"

	"github.com/cradoe/indigene/internal/file"
	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadBase64(ctx context.Context, dataURI, folder string) (*file.UploadedFile, error) {
	args := m.Called(ctx, dataURI, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*file.UploadedFile), args.Error(1)
}

func (m *MockUploader) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
