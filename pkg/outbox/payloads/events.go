package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/pkg/enums"
)

// OrderAddonLine mirrors one addon line on an order event.
type OrderAddonLine struct {
	AddonID  uuid.UUID       `json:"addonId"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderCreatedEvent is emitted when a new order row is committed.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID        `json:"orderId"`
	UserID      uuid.UUID        `json:"userId"`
	ContainerID uuid.UUID        `json:"containerId"`
	Type        enums.OrderType  `json:"type"`
	TotalPrice  decimal.Decimal  `json:"totalPrice"`
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	Addons      []OrderAddonLine `json:"addons,omitempty"`
}

// OrderPaidEvent is emitted when a webhook confirms payment.
type OrderPaidEvent struct {
	OrderID         uuid.UUID       `json:"orderId"`
	UserID          uuid.UUID       `json:"userId"`
	ContainerID     uuid.UUID       `json:"containerId"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	StripeSessionID string          `json:"stripeSessionId,omitempty"`
}

// OrderPaymentFailedEvent is emitted when a payment attempt fails.
type OrderPaymentFailedEvent struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  uuid.UUID `json:"userId"`
	Reason  string    `json:"reason,omitempty"`
}

// OrderDeletedEvent is emitted when an order is removed by its owner or an admin.
type OrderDeletedEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	UserID      uuid.UUID         `json:"userId"`
	ContainerID uuid.UUID         `json:"containerId"`
	Status      enums.OrderStatus `json:"status"`
}
