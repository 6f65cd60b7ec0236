package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderAddon records one addon line attached to an order. Subtotal is the
// addon price times quantity, snapshotted at order time. The unique index
// makes the webhook's addon upsert idempotent under Stripe redelivery.
type OrderAddon struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_addons_order_addon"`
	AddonID   uuid.UUID       `gorm:"column:addon_id;type:uuid;not null;uniqueIndex:ux_order_addons_order_addon"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`

	Addon *Addon `gorm:"foreignKey:AddonID"`
}
