package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/dkowalski/containerdepot-backend/internal/orders"
	"github.com/dkowalski/containerdepot-backend/pkg/config"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
	"github.com/dkowalski/containerdepot-backend/pkg/outbox/payloads"
)

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateInput) (*orders.OrderDTO, error)
	Update(ctx context.Context, id uuid.UUID, requester orders.Requester, input orders.UpdateInput) (*orders.OrderDTO, error)
}

// SessionResult is returned to the client to start hosted checkout.
type SessionResult struct {
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
	OrderID   uuid.UUID `json:"order_id"`
}

// Service creates a pending order and opens a Stripe hosted checkout
// session for it.
type Service interface {
	CreateSession(ctx context.Context, requester orders.Requester, email string, input orders.CreateInput) (*SessionResult, error)
}

type service struct {
	orders orderCreator
	stripe StripeSessionClient
	cfg    config.CheckoutConfig
	logg   *logger.Logger
}

// NewService wires the session bridge.
func NewService(orderSvc orderCreator, stripeClient StripeSessionClient, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe session client required")
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" || strings.TrimSpace(cfg.CancelURL) == "" {
		return nil, fmt.Errorf("checkout success and cancel urls required")
	}
	return &service{orders: orderSvc, stripe: stripeClient, cfg: cfg, logg: logg}, nil
}

func (s *service) CreateSession(ctx context.Context, requester orders.Requester, email string, input orders.CreateInput) (*SessionResult, error) {
	input.UserID = requester.UserID

	order, err := s.orders.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	params, err := s.buildSessionParams(order, email)
	if err != nil {
		return nil, err
	}

	sess, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	// Stamp failure is tolerable: the webhook falls back to payment-intent
	// correlation when the session id is missing.
	if _, err := s.orders.Update(ctx, order.ID, requester, orders.UpdateInput{StripeSessionID: &sess.ID}); err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Warn(logCtx, fmt.Sprintf("stripe session id stamp failed: %v", err))
		}
	}

	return &SessionResult{SessionID: sess.ID, URL: sess.URL, OrderID: order.ID}, nil
}

func (s *service) buildSessionParams(order *orders.OrderDTO, email string) (*stripe.CheckoutSessionCreateParams, error) {
	currency := strings.ToLower(strings.TrimSpace(s.cfg.Currency))
	if currency == "" {
		currency = "usd"
	}

	addonTotal := decimal.Zero
	for _, line := range order.Addons {
		addonTotal = addonTotal.Add(line.Subtotal)
	}
	containerAmount := order.TotalPrice.Sub(addonTotal)

	containerName := "Container"
	if order.Container != nil {
		containerName = order.Container.Title
	}

	lineItems := []*stripe.CheckoutSessionCreateLineItemParams{
		{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toCents(containerAmount)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s (%s)", containerName, order.Type)),
				},
			},
		},
	}

	manifest := make([]payloads.OrderAddonLine, 0, len(order.Addons))
	for _, line := range order.Addons {
		manifest = append(manifest, payloads.OrderAddonLine{
			AddonID:  line.AddonID,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal,
		})

		name := "Add-on"
		if line.Addon != nil {
			name = line.Addon.Name
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toCents(line.Subtotal)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s x%d", name, line.Quantity)),
				},
			},
		})
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode addon manifest")
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(appendQuery(s.cfg.SuccessURL, fmt.Sprintf("session_id={CHECKOUT_SESSION_ID}&order_id=%s", order.ID))),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems:  lineItems,
	}
	if strings.TrimSpace(email) != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_id", order.UserID.String())
	params.AddMetadata("container_id", order.ContainerID.String())
	params.AddMetadata("type", order.Type.String())
	params.AddMetadata("addons", string(manifestJSON))
	return params, nil
}

func appendQuery(base, query string) string {
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
