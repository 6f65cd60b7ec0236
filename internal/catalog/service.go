package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
)

// Service exposes catalog reads for order creation plus admin CRUD.
type Service interface {
	GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error)
	ListContainers(ctx context.Context, filters ContainerFilters) ([]models.Container, error)
	CreateContainer(ctx context.Context, input CreateContainerInput) (*models.Container, error)
	UpdateContainer(ctx context.Context, id uuid.UUID, input UpdateContainerInput) (*models.Container, error)
	DeleteContainer(ctx context.Context, id uuid.UUID) error

	GetAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error)
	ListAddons(ctx context.Context, availableOnly bool) ([]models.Addon, error)
	CreateAddon(ctx context.Context, input CreateAddonInput) (*models.Addon, error)
	UpdateAddon(ctx context.Context, id uuid.UUID, input UpdateAddonInput) (*models.Addon, error)
	DeleteAddon(ctx context.Context, id uuid.UUID) error
}

// CreateContainerInput holds the validated payload to create a container.
type CreateContainerInput struct {
	Title         string
	Description   *string
	Size          *string
	Location      string
	Address       *string
	ImageURL      *string
	AvailableDate time.Time
	Price         decimal.Decimal
	IsAvailable   *bool
}

// UpdateContainerInput holds optional mutation values for a container.
// Availability is deliberately absent: the availability controller is the
// sole writer of is_available.
type UpdateContainerInput struct {
	Title         *string
	Description   *string
	Size          *string
	Location      *string
	Address       *string
	ImageURL      *string
	AvailableDate *time.Time
	Price         *decimal.Decimal
}

// CreateAddonInput holds the validated payload to create an addon.
type CreateAddonInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Unit        *string
	IsAvailable *bool
}

// UpdateAddonInput holds optional mutation values for an addon.
type UpdateAddonInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Unit        *string
	IsAvailable *bool
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}
	container, err := s.repo.FindContainer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load container")
	}
	return container, nil
}

func (s *service) ListContainers(ctx context.Context, filters ContainerFilters) ([]models.Container, error) {
	containers, err := s.repo.ListContainers(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list containers")
	}
	return containers, nil
}

func (s *service) CreateContainer(ctx context.Context, input CreateContainerInput) (*models.Container, error) {
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	container := &models.Container{
		Title:         input.Title,
		Description:   input.Description,
		Size:          input.Size,
		Location:      input.Location,
		Address:       input.Address,
		ImageURL:      input.ImageURL,
		AvailableDate: input.AvailableDate,
		Price:         input.Price,
		IsAvailable:   true,
	}
	if input.IsAvailable != nil {
		container.IsAvailable = *input.IsAvailable
	}

	created, err := s.repo.CreateContainer(ctx, container)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create container")
	}
	return created, nil
}

func (s *service) UpdateContainer(ctx context.Context, id uuid.UUID, input UpdateContainerInput) (*models.Container, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Size != nil {
		updates["size"] = *input.Size
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.AvailableDate != nil {
		updates["available_date"] = *input.AvailableDate
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.UpdateContainer(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update container")
	}
	return s.GetContainer(ctx, id)
}

func (s *service) DeleteContainer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}
	if err := s.repo.DeleteContainer(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete container")
	}
	return nil
}

func (s *service) GetAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error) {
	addons, err := s.repo.FindAddonsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addons")
	}
	return addons, nil
}

func (s *service) ListAddons(ctx context.Context, availableOnly bool) ([]models.Addon, error) {
	addons, err := s.repo.ListAddons(ctx, availableOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}
	return addons, nil
}

func (s *service) CreateAddon(ctx context.Context, input CreateAddonInput) (*models.Addon, error) {
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	addon := &models.Addon{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Unit:        input.Unit,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		addon.IsAvailable = *input.IsAvailable
	}

	created, err := s.repo.CreateAddon(ctx, addon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create addon")
	}
	return created, nil
}

func (s *service) UpdateAddon(ctx context.Context, id uuid.UUID, input UpdateAddonInput) (*models.Addon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "addon id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.UpdateAddon(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update addon")
	}

	addon, err := s.repo.FindAddon(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload addon")
	}
	return addon, nil
}

func (s *service) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "addon id required")
	}
	if err := s.repo.DeleteAddon(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete addon")
	}
	return nil
}
