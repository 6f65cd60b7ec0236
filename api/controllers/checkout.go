package controllers

import (
	"net/http"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	"github.com/dkowalski/containerdepot-backend/api/validators"
	"github.com/dkowalski/containerdepot-backend/internal/checkout"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

type checkoutRequest struct {
	createOrderRequest
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// Checkout creates a pending order and opens a Stripe hosted checkout
// session for it.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), requester, payload.Email, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
