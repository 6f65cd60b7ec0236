package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
)

// ContainerSummary is the joined container snapshot returned with an order.
type ContainerSummary struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Size     *string         `json:"size,omitempty"`
	Location string          `json:"location"`
	Price    decimal.Decimal `json:"price"`
}

// UserSummary is the joined owner snapshot returned with an order.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

// AddonSummary is the joined addon snapshot inside an order line.
type AddonSummary struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Unit  *string         `json:"unit,omitempty"`
}

// OrderAddonDTO is one frozen addon line on an order.
type OrderAddonDTO struct {
	ID       uuid.UUID       `json:"id"`
	AddonID  uuid.UUID       `json:"addon_id"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Addon    *AddonSummary   `json:"addon,omitempty"`
}

// OrderDTO is the persisted order shape exposed over HTTP.
type OrderDTO struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"user_id"`
	ContainerID           uuid.UUID           `json:"container_id"`
	Type                  enums.OrderType     `json:"type"`
	StartDate             *time.Time          `json:"start_date,omitempty"`
	EndDate               *time.Time          `json:"end_date,omitempty"`
	TotalPrice            decimal.Decimal     `json:"total_price"`
	Status                enums.OrderStatus   `json:"status"`
	PaymentStatus         enums.PaymentStatus `json:"payment_status"`
	DeliveryAddress       *string             `json:"delivery_address,omitempty"`
	Notes                 *string             `json:"notes,omitempty"`
	StripeSessionID       *string             `json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string             `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Container             *ContainerSummary   `json:"container,omitempty"`
	User                  *UserSummary        `json:"user,omitempty"`
	Addons                []OrderAddonDTO     `json:"addons"`
}

// ToDTO maps a loaded order row (with its joins) to the HTTP shape.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	dto := &OrderDTO{
		ID:                    order.ID,
		UserID:                order.UserID,
		ContainerID:           order.ContainerID,
		Type:                  order.Type,
		StartDate:             order.StartDate,
		EndDate:               order.EndDate,
		TotalPrice:            order.TotalPrice,
		Status:                order.Status,
		PaymentStatus:         order.PaymentStatus,
		DeliveryAddress:       order.DeliveryAddress,
		Notes:                 order.Notes,
		StripeSessionID:       order.StripeSessionID,
		StripePaymentIntentID: order.StripePaymentIntentID,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
		Addons:                make([]OrderAddonDTO, 0, len(order.Addons)),
	}

	if order.Container != nil {
		dto.Container = &ContainerSummary{
			ID:       order.Container.ID,
			Title:    order.Container.Title,
			Size:     order.Container.Size,
			Location: order.Container.Location,
			Price:    order.Container.Price,
		}
	}
	if order.User != nil {
		dto.User = &UserSummary{
			ID:    order.User.ID,
			Email: order.User.Email,
			Name:  order.User.Name,
		}
	}
	for _, line := range order.Addons {
		item := OrderAddonDTO{
			ID:       line.ID,
			AddonID:  line.AddonID,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal,
		}
		if line.Addon != nil {
			item.Addon = &AddonSummary{
				ID:    line.Addon.ID,
				Name:  line.Addon.Name,
				Price: line.Addon.Price,
				Unit:  line.Addon.Unit,
			}
		}
		dto.Addons = append(dto.Addons, item)
	}
	return dto
}

// ToDTOs maps a slice of order rows.
func ToDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
