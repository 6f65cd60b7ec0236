package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Container is a rentable or purchasable storage unit. IsAvailable is the
// authoritative inventory flag; it is written only by the availability
// controller in response to order lifecycle transitions.
type Container struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string          `gorm:"column:title;not null"`
	Description   *string         `gorm:"column:description"`
	Size          *string         `gorm:"column:size"`
	Location      string          `gorm:"column:location;not null"`
	Address       *string         `gorm:"column:address"`
	ImageURL      *string         `gorm:"column:image_url"`
	AvailableDate time.Time       `gorm:"column:available_date;type:date;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	IsAvailable   bool            `gorm:"column:is_available;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
