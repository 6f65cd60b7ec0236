package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

// Controller is the sole writer of the container is_available flag. Writes
// are unconditional and idempotent; concurrent order flows race with
// last-write-wins semantics and no cross-request locking.
type Controller interface {
	Set(ctx context.Context, containerID uuid.UUID, available bool) error
}

type controller struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewController builds the availability controller.
func NewController(db *gorm.DB, logg *logger.Logger) (Controller, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &controller{db: db, logg: logg}, nil
}

func (c *controller) Set(ctx context.Context, containerID uuid.UUID, available bool) error {
	if containerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}

	result := c.db.WithContext(ctx).
		Model(&models.Container{}).
		Where("id = ?", containerID).
		Update("is_available", available)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update container availability")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "container not found")
	}

	if c.logg != nil {
		logCtx := c.logg.WithContainerID(ctx, containerID.String())
		c.logg.Info(logCtx, fmt.Sprintf("container availability set to %t", available))
	}
	return nil
}
