package service

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/tastegent/tastegent/internal/domain"
)

// UploadService ingests image uploads: validate, normalize, store.
type UploadService struct {
	raster *Rasterizer
	files  domain.FileRepository
}

// NewUploadService creates a new upload service
func NewUploadService(raster *Rasterizer, files domain.FileRepository) *UploadService {
	return &UploadService{
		raster: raster,
		files:  files,
	}
}

// Store validates the payload is an image, normalizes it to the stored JPEG
// format and writes it to the object store under a fresh ULID filename.
// The caller keeps the returned UploadResult; the stored file is immutable.
func (s *UploadService) Store(ctx context.Context, originalFilename string, data []byte) (*domain.UploadResult, error) {
	if detectImageType(data) == "" {
		return nil, domain.ErrNotAnImage
	}

	normalized, err := s.raster.Normalize(data)
	if err != nil {
		return nil, err
	}

	storedFilename := ulid.Make().String() + ".jpg"

	url, err := s.files.Upload(ctx, normalized, storedFilename, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return &domain.UploadResult{
		OriginalFilename: originalFilename,
		StoredFilename:   storedFilename,
		URL:              url,
	}, nil
}

// Fetch streams a stored file back for GET /uploads/:filename
func (s *UploadService) Fetch(ctx context.Context, filename string) ([]byte, string, error) {
	return s.files.Download(ctx, filename)
}
