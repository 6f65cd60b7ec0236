package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/internal/pricing"
	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
	"github.com/dkowalski/containerdepot-backend/pkg/outbox"
	"github.com/dkowalski/containerdepot-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogGateway interface {
	GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error)
	GetAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error)
}

type availabilitySetter interface {
	Set(ctx context.Context, containerID uuid.UUID, available bool) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderMetrics interface {
	IncCreated(orderType string)
	IncDeleted()
}

// Requester identifies the authenticated caller for authorization checks.
type Requester struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == enums.UserRoleAdmin
}

// CreateInput carries the validated payload for order creation. TotalPrice is
// deliberately absent: pricing is always recomputed server-side.
type CreateInput struct {
	UserID          uuid.UUID
	ContainerID     uuid.UUID
	Type            enums.OrderType
	StartDate       *time.Time
	EndDate         *time.Time
	DeliveryAddress *string
	Notes           *string
	Addons          []pricing.AddonSelection
}

// UpdateInput holds optional mutation values for an order.
type UpdateInput struct {
	Status                *enums.OrderStatus
	PaymentStatus         *enums.PaymentStatus
	StartDate             *time.Time
	EndDate               *time.Time
	DeliveryAddress       *string
	Notes                 *string
	StripeSessionID       *string
	StripePaymentIntentID *string
}

// Service exposes the order manager operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID, requester Requester) (*OrderDTO, error)
	Update(ctx context.Context, id uuid.UUID, requester Requester, input UpdateInput) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID, requester Requester) error
}

type service struct {
	repo         Repository
	tx           txRunner
	catalog      catalogGateway
	availability availabilitySetter
	outbox       outboxPublisher
	metrics      orderMetrics
	logg         *logger.Logger
}

// NewService builds the order manager with the required dependencies.
// Metrics and logger are optional.
func NewService(repo Repository, tx txRunner, catalog catalogGateway, availability availabilitySetter, outboxSvc outboxPublisher, metrics orderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	if availability == nil {
		return nil, fmt.Errorf("availability controller required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		catalog:      catalog,
		availability: availability,
		outbox:       outboxSvc,
		metrics:      metrics,
		logg:         logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ContainerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", input.Type))
	}
	if input.StartDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date required")
	}
	if input.Type == enums.OrderTypeRent && input.EndDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental orders require an end date")
	}

	container, err := s.catalog.GetContainer(ctx, input.ContainerID)
	if err != nil {
		return nil, err
	}
	if !container.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "container is not available")
	}

	// Addons are re-fetched per creation; a stale read from an earlier
	// request must never price an order.
	addonIDs := make([]uuid.UUID, 0, len(input.Addons))
	for _, sel := range input.Addons {
		addonIDs = append(addonIDs, sel.AddonID)
	}
	catalogAddons, err := s.catalog.GetAddons(ctx, addonIDs)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.BuildQuote(*container, input.Type, input.StartDate, input.EndDate, input.Addons, catalogAddons)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          input.UserID,
		ContainerID:     input.ContainerID,
		Type:            input.Type,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		TotalPrice:      quote.Total,
		DeliveryAddress: input.DeliveryAddress,
		Notes:           input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		lines := make([]models.OrderAddon, 0, len(quote.AddonLines))
		for _, line := range quote.AddonLines {
			lines = append(lines, models.OrderAddon{
				OrderID:  order.ID,
				AddonID:  line.AddonID,
				Quantity: line.Quantity,
				Subtotal: line.Subtotal,
			})
		}
		if err := repo.CreateOrderAddons(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order addons")
		}

		s.emitCreated(ctx, tx, order, quote)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Availability toggle stays outside the transaction: its failure is
	// logged, never fatal to the created order.
	if input.Type == enums.OrderTypeRent {
		if err := s.availability.Set(ctx, input.ContainerID, false); err != nil {
			s.warn(ctx, order.ID, fmt.Sprintf("availability toggle failed: %v", err))
		}
	}

	if s.metrics != nil {
		s.metrics.IncCreated(input.Type.String())
	}

	return s.reload(ctx, order.ID)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return ToDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return ToDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, requester Requester) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(order, requester); err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, requester Requester, input UpdateInput) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(order, requester); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
		}
		updates["status"] = *input.Status
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", *input.PaymentStatus))
		}
		updates["payment_status"] = *input.PaymentStatus
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if input.DeliveryAddress != nil {
		updates["delivery_address"] = *input.DeliveryAddress
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.StripeSessionID != nil {
		updates["stripe_session_id"] = *input.StripeSessionID
	}
	if input.StripePaymentIntentID != nil {
		updates["stripe_payment_intent_id"] = *input.StripePaymentIntentID
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return s.reload(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, requester Requester) error {
	order, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(order, requester); err != nil {
		return err
	}

	wasConfirmedRental := order.Type == enums.OrderTypeRent && order.Status == enums.OrderStatusConfirmed

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		s.emitDeleted(ctx, tx, order)
		return nil
	})
	if err != nil {
		return err
	}

	if wasConfirmedRental {
		if err := s.availability.Set(ctx, order.ContainerID, true); err != nil {
			s.warn(ctx, order.ID, fmt.Sprintf("availability restore failed: %v", err))
		}
	}

	if s.metrics != nil {
		s.metrics.IncDeleted()
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return ToDTO(order), nil
}

func authorize(order *models.Order, requester Requester) error {
	if requester.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return nil
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, order *models.Order, quote *pricing.Quote) {
	lines := make([]payloads.OrderAddonLine, 0, len(quote.AddonLines))
	for _, line := range quote.AddonLines {
		lines = append(lines, payloads.OrderAddonLine{
			AddonID:  line.AddonID,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal,
		})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: order.UserID},
		Version:       1,
		Data: payloads.OrderCreatedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			ContainerID: order.ContainerID,
			Type:        order.Type,
			TotalPrice:  order.TotalPrice,
			StartDate:   order.StartDate,
			EndDate:     order.EndDate,
			Addons:      lines,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		s.warn(ctx, order.ID, fmt.Sprintf("outbox emit failed: %v", err))
	}
}

func (s *service) emitDeleted(ctx context.Context, tx *gorm.DB, order *models.Order) {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderDeleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: order.UserID},
		Version:       1,
		Data: payloads.OrderDeletedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			ContainerID: order.ContainerID,
			Status:      order.Status,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		s.warn(ctx, order.ID, fmt.Sprintf("outbox emit failed: %v", err))
	}
}

func (s *service) warn(ctx context.Context, orderID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Warn(logCtx, msg)
}
