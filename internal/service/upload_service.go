package service

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/storage"
)

// UploadFolder holds user uploaded images next to the job folders
const UploadFolder = "my-uploads"

// UploadService stores images uploaded through the web UI
type UploadService struct {
	store *storage.Store
	now   func() time.Time
}

func NewUploadService(store *storage.Store) *UploadService {
	return &UploadService{
		store: store,
		now:   time.Now,
	}
}

// Save writes an uploaded image under a unique name and returns its public URL
func (s *UploadService) Save(originalName, contentType string, file io.Reader) (*model.UploadResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedFile
	}

	dir, err := s.store.EnsureDir(UploadFolder)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.New().String()[:8], ext)

	if _, err := s.store.WriteStream(dir, name, func(w io.Writer) (int64, error) {
		return io.Copy(w, file)
	}); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return &model.UploadResponse{
		Message: "Upload successful",
		File:    name,
		URL:     PublicURL(UploadFolder, name),
	}, nil
}
