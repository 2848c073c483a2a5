package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// ImageStore keeps uploaded product images on disk. Stored paths are URL
// paths under PublicPrefix.
type ImageStore struct {
	Dir          string
	PublicPrefix string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{Dir: dir, PublicPrefix: "/uploads"}, nil
}

func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return path.Join(s.PublicPrefix, name), nil
}

// Remove deletes a file previously returned by Save. Unknown paths are ignored.
func (s *ImageStore) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, s.PublicPrefix+"/")
	if name == publicPath || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
