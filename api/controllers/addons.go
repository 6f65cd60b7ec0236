package controllers

import (
	"net/http"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	"github.com/dkowalski/containerdepot-backend/internal/catalog"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

// ListAddons serves the public add-on catalog, available entries only.
func ListAddons(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		addons, err := svc.ListAddons(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addons)
	}
}
