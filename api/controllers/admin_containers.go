package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	"github.com/dkowalski/containerdepot-backend/api/validators"
	"github.com/dkowalski/containerdepot-backend/internal/catalog"
	"github.com/dkowalski/containerdepot-backend/internal/media"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

const maxUploadFormBytes = 12 << 20

type createContainerRequest struct {
	Title         string          `json:"title" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	Size          *string         `json:"size,omitempty"`
	Location      string          `json:"location" validate:"required"`
	Address       *string         `json:"address,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	AvailableDate string          `json:"available_date" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	IsAvailable   *bool           `json:"is_available,omitempty"`
}

func (req *createContainerRequest) toCreateInput() (catalog.CreateContainerInput, error) {
	availableDate, err := parseDate(req.AvailableDate, "available_date")
	if err != nil {
		return catalog.CreateContainerInput{}, err
	}
	return catalog.CreateContainerInput{
		Title:         req.Title,
		Description:   req.Description,
		Size:          req.Size,
		Location:      req.Location,
		Address:       req.Address,
		ImageURL:      req.ImageURL,
		AvailableDate: *availableDate,
		Price:         req.Price,
		IsAvailable:   req.IsAvailable,
	}, nil
}

type updateContainerRequest struct {
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Size          *string          `json:"size,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Address       *string          `json:"address,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	AvailableDate *string          `json:"available_date,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
}

func (req *updateContainerRequest) toUpdateInput() (catalog.UpdateContainerInput, error) {
	input := catalog.UpdateContainerInput{
		Title:       req.Title,
		Description: req.Description,
		Size:        req.Size,
		Location:    req.Location,
		Address:     req.Address,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
	}
	if req.AvailableDate != nil {
		availableDate, err := parseDate(*req.AvailableDate, "available_date")
		if err != nil {
			return catalog.UpdateContainerInput{}, err
		}
		input.AvailableDate = availableDate
	}
	return input, nil
}

func AdminCreateContainer(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createContainerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		container, err := svc.CreateContainer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, container)
	}
}

// AdminUploadContainer creates a container from a multipart form and
// stores the attached image in the bucket.
func AdminUploadContainer(svc catalog.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		if mediaSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadFormBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		payload := createContainerRequest{
			Title:         strings.TrimSpace(r.FormValue("title")),
			Location:      strings.TrimSpace(r.FormValue("location")),
			AvailableDate: strings.TrimSpace(r.FormValue("available_date")),
		}
		if payload.Title == "" || payload.Location == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "title and location are required"))
			return
		}
		if payload.AvailableDate == "" {
			payload.AvailableDate = time.Now().UTC().Format(dateLayout)
		}
		if v := strings.TrimSpace(r.FormValue("description")); v != "" {
			payload.Description = &v
		}
		if v := strings.TrimSpace(r.FormValue("size")); v != "" {
			payload.Size = &v
		}
		if v := strings.TrimSpace(r.FormValue("address")); v != "" {
			payload.Address = &v
		}

		price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number"))
			return
		}
		payload.Price = price

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		container, err := svc.CreateContainer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			result, uploadErr := mediaSvc.UploadContainerImage(r.Context(), container.ID, header.Header.Get("Content-Type"), header.Size, file)
			if uploadErr != nil {
				responses.WriteError(r.Context(), logg, w, uploadErr)
				return
			}
			container.ImageURL = &result.URL
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, container)
	}
}

func AdminUpdateContainer(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateContainerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		container, err := svc.UpdateContainer(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, container)
	}
}

func AdminDeleteContainer(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteContainer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
