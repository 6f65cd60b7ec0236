package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindContainer(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	var container models.Container
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&container).Error
	if err != nil {
		return nil, err
	}
	return &container, nil
}

func (r *repository) ListContainers(ctx context.Context, filters ContainerFilters) ([]models.Container, error) {
	query := r.db.WithContext(ctx).Model(&models.Container{})
	if filters.Location != "" {
		query = query.Where("location = ?", filters.Location)
	}
	if filters.Available != nil {
		query = query.Where("is_available = ?", *filters.Available)
	}

	var containers []models.Container
	if err := query.Order("created_at DESC").Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

func (r *repository) CreateContainer(ctx context.Context, container *models.Container) (*models.Container, error) {
	if err := r.db.WithContext(ctx).Create(container).Error; err != nil {
		return nil, err
	}
	return container, nil
}

func (r *repository) UpdateContainer(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Container{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteContainer(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Container{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error) {
	var addon models.Addon
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&addon).Error
	if err != nil {
		return nil, err
	}
	return &addon, nil
}

func (r *repository) FindAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addons []models.Addon
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("is_available = ?", true).
		Find(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *repository) ListAddons(ctx context.Context, availableOnly bool) ([]models.Addon, error) {
	query := r.db.WithContext(ctx).Model(&models.Addon{})
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	var addons []models.Addon
	if err := query.Order("name ASC").Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *repository) CreateAddon(ctx context.Context, addon *models.Addon) (*models.Addon, error) {
	if err := r.db.WithContext(ctx).Create(addon).Error; err != nil {
		return nil, err
	}
	return addon, nil
}

func (r *repository) UpdateAddon(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Addon{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Addon{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
