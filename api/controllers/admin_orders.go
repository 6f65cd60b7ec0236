package controllers

import (
	"net/http"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	"github.com/dkowalski/containerdepot-backend/internal/orders"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

// AdminListOrders returns every order with user, container and addon joins.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		list, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
