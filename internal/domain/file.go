package domain

import (
	"context"
	"errors"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNotAnImage   = errors.New("file is not a supported image")
)

// UploadResult is returned by POST /upload once a file is stored.
// Ownership of the URL passes to the caller (a chat attachment or a
// catalog entry); the record itself is never mutated afterwards.
type UploadResult struct {
	OriginalFilename string `json:"original_filename"`
	StoredFilename   string `json:"stored_filename"`
	URL              string `json:"url"`
}

// FileRepository defines the interface for file storage operations
type FileRepository interface {
	// Upload saves a file under the given name and returns its access URL
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
	// Download returns the stored bytes and content type for a filename
	Download(ctx context.Context, filename string) ([]byte, string, error)
}
