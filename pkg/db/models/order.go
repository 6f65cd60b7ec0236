package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/pkg/enums"
)

// Order is the aggregate root of the order state machine. TotalPrice is the
// server-computed snapshot taken at creation; it is never recomputed from the
// catalog afterwards. StripeSessionID is stamped after checkout session
// creation and, together with StripePaymentIntentID, links webhook events
// back to the row.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ContainerID           uuid.UUID           `gorm:"column:container_id;type:uuid;not null;index"`
	Type                  enums.OrderType     `gorm:"column:type;type:text;not null"`
	Status                enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	StartDate             *time.Time          `gorm:"column:start_date;type:date"`
	EndDate               *time.Time          `gorm:"column:end_date;type:date"`
	TotalPrice            decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	DeliveryAddress       *string             `gorm:"column:delivery_address"`
	Notes                 *string             `gorm:"column:notes"`
	StripeSessionID       *string             `gorm:"column:stripe_session_id;index"`
	StripePaymentIntentID *string             `gorm:"column:stripe_payment_intent_id;index"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	User      *User        `gorm:"foreignKey:UserID"`
	Container *Container   `gorm:"foreignKey:ContainerID"`
	Addons    []OrderAddon `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
