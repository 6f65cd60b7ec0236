package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/internal/orders"
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

type availabilitySetter interface {
	Set(ctx context.Context, containerID uuid.UUID, available bool) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	OrdersRepo        orders.Repository
	TransactionRunner txRunner
	Availability      availabilitySetter
	Outbox            outboxPublisher
	Logger            *logger.Logger
}

// Service reconciles Stripe payment events back into order and
// availability state.
type Service struct {
	repo         orders.Repository
	txRunner     txRunner
	availability availabilitySetter
	outbox       outboxPublisher
	logg         *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Availability == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "availability controller required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox publisher required")
	}
	return &Service{
		repo:         params.OrdersRepo,
		txRunner:     params.TransactionRunner,
		availability: params.Availability,
		outbox:       params.Outbox,
		logg:         params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleSessionCompleted(ctx, &session)
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.handleIntentSucceeded(ctx, &intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.handleIntentFailed(ctx, &intent)
	default:
		return nil
	}
}

func (s *Service) handleSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	rawOrderID := session.Metadata["order_id"]
	if rawOrderID == "" {
		s.warn(ctx, "", "checkout session completed without order_id metadata, skipping")
		return nil
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		s.warn(ctx, rawOrderID, fmt.Sprintf("unparseable order_id metadata: %v", err))
		return nil
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.warn(ctx, rawOrderID, "checkout session references unknown order, skipping")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	lines, err := decodeAddonManifest(session.Metadata["addons"])
	if err != nil {
		s.warn(ctx, rawOrderID, fmt.Sprintf("addon manifest rejected: %v", err))
		lines = nil
	}

	updates := map[string]any{
		"status":         enums.OrderStatusConfirmed,
		"payment_status": enums.PaymentStatusPaid,
	}
	var sessionID *string
	if session.ID != "" {
		sessionID = &session.ID
		updates["stripe_session_id"] = session.ID
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		updates["stripe_payment_intent_id"] = session.PaymentIntent.ID
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		for _, line := range lines {
			addon := models.OrderAddon{
				OrderID:  order.ID,
				AddonID:  line.AddonID,
				Quantity: line.Quantity,
				Subtotal: line.Subtotal,
			}
			if err := repo.UpsertOrderAddon(ctx, addon); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert order addon")
			}
		}
		s.emitPaid(ctx, tx, order, sessionID)
		return nil
	})
	if err != nil {
		return err
	}

	if order.Type == enums.OrderTypeRent {
		if err := s.availability.Set(ctx, order.ContainerID, false); err != nil {
			s.warn(ctx, rawOrderID, fmt.Sprintf("availability toggle failed: %v", err))
		}
	}
	return nil
}

func (s *Service) handleIntentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	order, err := s.repo.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.warn(ctx, "", fmt.Sprintf("payment intent %s matches no order, skipping", intent.ID))
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order by payment intent")
	}

	updates := map[string]any{
		"status":         enums.OrderStatusConfirmed,
		"payment_status": enums.PaymentStatusPaid,
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	return nil
}

func (s *Service) handleIntentFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	order, err := s.repo.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.warn(ctx, "", fmt.Sprintf("payment intent %s matches no order, skipping", intent.ID))
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order by payment intent")
	}

	reason := failureReason(intent)
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{
			"status":         enums.OrderStatusCancelled,
			"payment_status": enums.PaymentStatusFailed,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		s.emitFailed(ctx, tx, order, reason)
		return nil
	})
	if err != nil {
		return err
	}

	// A failed payment releases the rental hold.
	if order.Type == enums.OrderTypeRent {
		if err := s.availability.Set(ctx, order.ContainerID, true); err != nil {
			s.warn(ctx, order.ID.String(), fmt.Sprintf("availability restore failed: %v", err))
		}
	}
	return nil
}

func decodeAddonManifest(raw string) ([]payloads.OrderAddonLine, error) {
	if raw == "" {
		return nil, nil
	}
	var lines []payloads.OrderAddonLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.AddonID == uuid.Nil || line.Quantity <= 0 {
			return nil, fmt.Errorf("manifest line missing addon id or quantity")
		}
	}
	return lines, nil
}

func failureReason(intent *stripe.PaymentIntent) string {
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	return "payment failed"
}

func (s *Service) emitPaid(ctx context.Context, tx *gorm.DB, order *models.Order, sessionID *string) {
	sid := ""
	if sessionID != nil {
		sid = *sessionID
	} else if order.StripeSessionID != nil {
		sid = *order.StripeSessionID
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.OrderPaidEvent{
			OrderID:         order.ID,
			UserID:          order.UserID,
			ContainerID:     order.ContainerID,
			TotalPrice:      order.TotalPrice,
			StripeSessionID: sid,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		s.warn(ctx, order.ID.String(), fmt.Sprintf("outbox emit failed: %v", err))
	}
}

func (s *Service) emitFailed(ctx context.Context, tx *gorm.DB, order *models.Order, reason string) {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderFailed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.OrderPaymentFailedEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Reason:  reason,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		s.warn(ctx, order.ID.String(), fmt.Sprintf("outbox emit failed: %v", err))
	}
}

func (s *Service) warn(ctx context.Context, orderID, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := ctx
	if orderID != "" {
		logCtx = s.logg.WithOrderID(ctx, orderID)
	}
	s.logg.Warn(logCtx, msg)
}
