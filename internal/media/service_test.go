package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dkowalski/containerdepot-backend/internal/catalog"
	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
)

type stubStore struct {
	uploaded []string
	deleted  []string
	err      error
}

func (s *stubStore) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploaded = append(s.uploaded, objectName)
	return "https://storage.googleapis.com/bucket/" + objectName, nil
}

func (s *stubStore) Delete(ctx context.Context, objectName string) error {
	s.deleted = append(s.deleted, objectName)
	return nil
}

type stubCatalog struct {
	container *models.Container
	getErr    error
	updateErr error
	stamped   []catalog.UpdateContainerInput
}

func (c *stubCatalog) GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.container, nil
}

func (c *stubCatalog) UpdateContainer(ctx context.Context, id uuid.UUID, input catalog.UpdateContainerInput) (*models.Container, error) {
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	c.stamped = append(c.stamped, input)
	return c.container, nil
}

func newMediaService(t *testing.T, store *stubStore, cat *stubCatalog) Service {
	t.Helper()
	svc, err := NewService(store, cat, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestUploadStampsImageURL(t *testing.T) {
	containerID := uuid.New()
	store := &stubStore{}
	cat := &stubCatalog{container: &models.Container{ID: containerID}}
	svc := newMediaService(t, store, cat)

	result, err := svc.UploadContainerImage(context.Background(), containerID, "image/png", 512, strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadContainerImage: %v", err)
	}
	if !strings.HasPrefix(result.ObjectName, "containers/"+containerID.String()+"/") {
		t.Fatalf("object name = %s", result.ObjectName)
	}
	if len(cat.stamped) != 1 || cat.stamped[0].ImageURL == nil || *cat.stamped[0].ImageURL != result.URL {
		t.Fatalf("image url not stamped: %+v", cat.stamped)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newMediaService(t, &stubStore{}, &stubCatalog{container: &models.Container{}})

	_, err := svc.UploadContainerImage(context.Background(), uuid.New(), "application/zip", 512, strings.NewReader("zip"))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	svc := newMediaService(t, &stubStore{}, &stubCatalog{container: &models.Container{}})

	_, err := svc.UploadContainerImage(context.Background(), uuid.New(), "image/jpeg", maxImageBytes+1, strings.NewReader("big"))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadPropagatesUnknownContainer(t *testing.T) {
	store := &stubStore{}
	cat := &stubCatalog{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "container not found")}
	svc := newMediaService(t, store, cat)

	_, err := svc.UploadContainerImage(context.Background(), uuid.New(), "image/png", 10, strings.NewReader("x"))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.uploaded) != 0 {
		t.Fatalf("nothing should upload for an unknown container")
	}
}

func TestUploadCleansUpWhenStampFails(t *testing.T) {
	containerID := uuid.New()
	store := &stubStore{}
	cat := &stubCatalog{container: &models.Container{ID: containerID}, updateErr: fmt.Errorf("db down")}
	svc := newMediaService(t, store, cat)

	_, err := svc.UploadContainerImage(context.Background(), containerID, "image/webp", 64, strings.NewReader("webp"))
	if err == nil {
		t.Fatalf("expected error when stamping fails")
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.uploaded[0] {
		t.Fatalf("uploaded object should be cleaned up, deleted=%v", store.deleted)
	}
}

func TestContentTypeParametersIgnored(t *testing.T) {
	containerID := uuid.New()
	store := &stubStore{}
	cat := &stubCatalog{container: &models.Container{ID: containerID}}
	svc := newMediaService(t, store, cat)

	if _, err := svc.UploadContainerImage(context.Background(), containerID, "image/PNG; charset=binary", 10, strings.NewReader("x")); err != nil {
		t.Fatalf("content type parameters must be tolerated: %v", err)
	}
}
