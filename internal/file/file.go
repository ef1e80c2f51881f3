package file

import (
	"context"
	"errors"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultTimeout = 30 * time.Second

var ErrInvalidDataURI = errors.New("file must be a base64 data URI")

// Uploader stores evidence files (passport photos, community-head
// documents) and can delete them again when a creation unit is rolled
// back.
type Uploader interface {
	UploadBase64(ctx context.Context, dataURI, folder string) (*UploadedFile, error)
	Delete(ctx context.Context, publicID string) error
}

// UploadedFile is the durable handle for an uploaded evidence file:
// the serving URL plus the provider id needed to delete it.
type UploadedFile struct {
	SecureURL string
	PublicID  string
}

type FileUploader struct {
	cloudName string
	apiKey    string
	apiSecret string
}

func New(cloudName, apiKey, apiSecret string) *FileUploader {
	return &FileUploader{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// UploadBase64 sends a base64 data URI straight to Cloudinary, which
// accepts that format natively.
func (f *FileUploader) UploadBase64(ctx context.Context, dataURI, folder string) (*UploadedFile, error) {
	cld, err := cloudinary.NewFromParams(f.cloudName, f.apiKey, f.apiSecret)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		SecureURL: uploadResult.SecureURL,
		PublicID:  uploadResult.PublicID,
	}, nil
}

func (f *FileUploader) Delete(ctx context.Context, publicID string) error {
	cld, err := cloudinary.NewFromParams(f.cloudName, f.apiKey, f.apiSecret)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
