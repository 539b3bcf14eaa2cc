package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidImageType = errors.New("file type not allowed, use png, jpg, jpeg or gif")
	ErrImageTooLarge    = errors.New("file is too large")
	ErrEmptyFile        = errors.New("file is empty")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageStore persists an uploaded image and returns the URL it is served from.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ValidateImage checks the extension and size of an upload.
func ValidateImage(filename string, size, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return ErrInvalidImageType
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: max %d bytes", ErrImageTooLarge, maxSize)
	}
	return nil
}
