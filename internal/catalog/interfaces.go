package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
)

// Repository defines persistence operations for the container/addon catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindContainer(ctx context.Context, id uuid.UUID) (*models.Container, error)
	ListContainers(ctx context.Context, filters ContainerFilters) ([]models.Container, error)
	CreateContainer(ctx context.Context, container *models.Container) (*models.Container, error)
	UpdateContainer(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteContainer(ctx context.Context, id uuid.UUID) error

	FindAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error)
	FindAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error)
	ListAddons(ctx context.Context, availableOnly bool) ([]models.Addon, error)
	CreateAddon(ctx context.Context, addon *models.Addon) (*models.Addon, error)
	UpdateAddon(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteAddon(ctx context.Context, id uuid.UUID) error
}

// ContainerFilters describe the inputs supported by the public container list.
type ContainerFilters struct {
	Location  string
	Available *bool
}
