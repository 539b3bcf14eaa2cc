package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

type Cloudinary struct {
	CLD    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "initialize cloudinary")
	}
	return &Cloudinary{CLD: cld, Folder: folder}, nil
}

// Save uploads the image into the configured folder.
func (c *Cloudinary) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	publicID := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	resp, err := c.CLD.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.Folder,
		PublicID:       publicID,
		UniqueFilename: boolPtr(true),
	})
	if err != nil {
		return "", errors.Wrap(err, "upload image")
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func boolPtr(b bool) *bool {
	return &b
}
