package services

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"urban-auto-server/config"
)

var ErrMediaUnavailable = errors.New("media uploads are not configured")

// MediaService uploads images to Cloudinary. Used by the admin console for
// signup carousel assets.
type MediaService struct {
	cld *cloudinary.Cloudinary
}

// NewMediaService creates a media service; nil client when CLOUDINARY_URL is
// unset.
func NewMediaService() *MediaService {
	svc := &MediaService{}
	if config.AppConfig.Cloudinary.URL == "" {
		return svc
	}
	cld, err := cloudinary.NewFromURL(config.AppConfig.Cloudinary.URL)
	if err == nil {
		svc.cld = cld
	}
	return svc
}

// ValidateImageFile validates mimetype by extension and size (<= 5MB)
func ValidateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// UploadImage uploads a multipart image into the given folder and returns its
// secure URL.
func (s *MediaService) UploadImage(ctx context.Context, header *multipart.FileHeader, folder string) (string, error) {
	if s.cld == nil {
		return "", ErrMediaUnavailable
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	overwrite := true
	unique := true
	up, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", err
	}
	return up.SecureURL, nil
}
