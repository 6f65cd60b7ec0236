package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dkowalski/containerdepot-backend/api/middleware"
	"github.com/dkowalski/containerdepot-backend/internal/orders"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
)

// requesterFromRequest resolves the authenticated caller seeded by the
// auth middleware.
func requesterFromRequest(r *http.Request) (orders.Requester, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return orders.Requester{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return orders.Requester{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return orders.Requester{
		UserID: userID,
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}, nil
}
