package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	"github.com/dkowalski/containerdepot-backend/api/validators"
	"github.com/dkowalski/containerdepot-backend/internal/orders"
	"github.com/dkowalski/containerdepot-backend/internal/pricing"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type orderAddonRequest struct {
	AddonID  string `json:"addon_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	ContainerID     string              `json:"container_id" validate:"required,uuid"`
	Type            string              `json:"type" validate:"required,oneof=rent buy"`
	StartDate       string              `json:"start_date" validate:"required"`
	EndDate         *string             `json:"end_date,omitempty"`
	DeliveryAddress *string             `json:"delivery_address,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Addons          []orderAddonRequest `json:"addons,omitempty" validate:"omitempty,dive"`
}

func (req *createOrderRequest) toCreateInput() (orders.CreateInput, error) {
	containerID, err := uuid.Parse(req.ContainerID)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid container id")
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return orders.CreateInput{}, err
	}
	var end *time.Time
	if req.EndDate != nil {
		end, err = parseDate(*req.EndDate, "end_date")
		if err != nil {
			return orders.CreateInput{}, err
		}
	}

	selections := make([]pricing.AddonSelection, 0, len(req.Addons))
	for _, line := range req.Addons {
		addonID, err := uuid.Parse(line.AddonID)
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addon id")
		}
		selections = append(selections, pricing.AddonSelection{AddonID: addonID, Quantity: line.Quantity})
	}

	return orders.CreateInput{
		ContainerID:     containerID,
		Type:            enums.OrderType(req.Type),
		StartDate:       start,
		EndDate:         end,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Addons:          selections,
	}, nil
}

type updateOrderRequest struct {
	Status                *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed shipped delivered completed cancelled"`
	PaymentStatus         *string `json:"payment_status,omitempty" validate:"omitempty,oneof=pending paid failed refunded"`
	StartDate             *string `json:"start_date,omitempty"`
	EndDate               *string `json:"end_date,omitempty"`
	DeliveryAddress       *string `json:"delivery_address,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	StripeSessionID       *string `json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty"`
}

func (req *updateOrderRequest) toUpdateInput() (orders.UpdateInput, error) {
	input := orders.UpdateInput{
		DeliveryAddress:       req.DeliveryAddress,
		Notes:                 req.Notes,
		StripeSessionID:       req.StripeSessionID,
		StripePaymentIntentID: req.StripePaymentIntentID,
	}
	if req.Status != nil {
		status := enums.OrderStatus(*req.Status)
		input.Status = &status
	}
	if req.PaymentStatus != nil {
		payment := enums.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &payment
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate, "start_date")
		if err != nil {
			return orders.UpdateInput{}, err
		}
		input.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate, "end_date")
		if err != nil {
			return orders.UpdateInput{}, err
		}
		input.EndDate = end
	}
	return input, nil
}

func parseDate(raw, field string) (*time.Time, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD").WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}

// CreateOrder prices and persists a new pending order for the caller.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.UserID = requester.UserID

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListMyOrders returns the caller's orders with container and addon joins.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), requester.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id, requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), id, requester, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DeleteOrder removes an order; deleting a confirmed rental releases the
// container hold.
func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, requester); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
