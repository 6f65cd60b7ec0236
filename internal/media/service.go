package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dkowalski/containerdepot-backend/internal/catalog"
	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

const maxImageBytes = 10 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type objectStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectName string) error
}

type containerUpdater interface {
	GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error)
	UpdateContainer(ctx context.Context, id uuid.UUID, input catalog.UpdateContainerInput) (*models.Container, error)
}

// UploadResult describes a stored container image.
type UploadResult struct {
	ContainerID uuid.UUID `json:"container_id"`
	ObjectName  string    `json:"object_name"`
	URL         string    `json:"url"`
}

// Service stores container images in the object store and stamps the
// public URL on the container record.
type Service interface {
	UploadContainerImage(ctx context.Context, containerID uuid.UUID, contentType string, size int64, body io.Reader) (*UploadResult, error)
}

type service struct {
	store   objectStore
	catalog containerUpdater
	logg    *logger.Logger
}

func NewService(store objectStore, catalogSvc containerUpdater, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{store: store, catalog: catalogSvc, logg: logg}, nil
}

func (s *service) UploadContainerImage(ctx context.Context, containerID uuid.UUID, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	if containerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}
	ext, ok := allowedImageTypes[normalizeContentType(contentType)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported image type %q", contentType))
	}
	if size <= 0 || size > maxImageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image size must be between 1 byte and %d bytes", maxImageBytes))
	}
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image body required")
	}

	if _, err := s.catalog.GetContainer(ctx, containerID); err != nil {
		return nil, err
	}

	objectName := path.Join("containers", containerID.String(), uuid.NewString()+ext)
	url, err := s.store.Upload(ctx, objectName, normalizeContentType(contentType), io.LimitReader(body, maxImageBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload container image")
	}

	if _, err := s.catalog.UpdateContainer(ctx, containerID, catalog.UpdateContainerInput{ImageURL: &url}); err != nil {
		// Keep the bucket consistent with the record when the stamp fails.
		if delErr := s.store.Delete(ctx, objectName); delErr != nil && s.logg != nil {
			logCtx := s.logg.WithContainerID(ctx, containerID.String())
			s.logg.Warn(logCtx, fmt.Sprintf("orphaned image cleanup failed: %v", delErr))
		}
		return nil, err
	}

	return &UploadResult{ContainerID: containerID, ObjectName: objectName, URL: url}, nil
}

func normalizeContentType(contentType string) string {
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	return strings.ToLower(strings.TrimSpace(base))
}
