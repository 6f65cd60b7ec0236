package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dkowalski/containerdepot-backend/pkg/enums"
)

// User is the identity record referenced by orders. Authentication lives
// upstream; this table only backs joins and role checks.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name      *string        `gorm:"column:name"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	Phone     *string        `gorm:"column:phone"`
	Address   *string        `gorm:"column:address"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
