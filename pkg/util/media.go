package util

import (
	"context"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/pkg/errors"
)

// MediaUploader stores an image and returns its public url.
type MediaUploader interface {
	Upload(ctx context.Context, file any) (string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

// Upload accepts anything the Cloudinary uploader does: a reader, a path or a remote url.
func (u *CloudinaryUploader) Upload(ctx context.Context, file any) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return "", errors.Wrap(err, "upload image")
	}
	if res.SecureURL == "" {
		return "", errors.New("upload image: no url returned")
	}
	return res.SecureURL, nil
}
