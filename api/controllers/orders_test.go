package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkowalski/containerdepot-backend/api/middleware"
	"github.com/dkowalski/containerdepot-backend/internal/orders"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
)

type fakeOrdersService struct {
	created  *orders.OrderDTO
	list     []orders.OrderDTO
	err      error
	lastIn   orders.CreateInput
	deleted  []uuid.UUID
	getCalls int
}

func (f *fakeOrdersService) Create(ctx context.Context, input orders.CreateInput) (*orders.OrderDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastIn = input
	return f.created, nil
}

func (f *fakeOrdersService) ListMine(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return f.list, f.err
}

func (f *fakeOrdersService) ListAll(ctx context.Context) ([]orders.OrderDTO, error) {
	return f.list, f.err
}

func (f *fakeOrdersService) Get(ctx context.Context, id uuid.UUID, requester orders.Requester) (*orders.OrderDTO, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeOrdersService) Update(ctx context.Context, id uuid.UUID, requester orders.Requester, input orders.UpdateInput) (*orders.OrderDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeOrdersService) Delete(ctx context.Context, id uuid.UUID, requester orders.Requester) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func authedRequest(method, target, body string, userID uuid.UUID, role enums.UserRole) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func orderDTO() *orders.OrderDTO {
	return &orders.OrderDTO{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ContainerID: uuid.New(),
		Type:        enums.OrderTypeRent,
		Status:      enums.OrderStatusPending,
		TotalPrice:  decimal.NewFromInt(300),
		Addons:      []orders.OrderAddonDTO{},
	}
}

func TestCreateOrderReturns201(t *testing.T) {
	svc := &fakeOrdersService{created: orderDTO()}
	handler := CreateOrder(svc, nil)

	containerID := uuid.New()
	body := `{"container_id":"` + containerID.String() + `","type":"rent","start_date":"2026-03-01","end_date":"2026-03-04"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastIn.ContainerID != containerID {
		t.Fatalf("container id not forwarded: %s", svc.lastIn.ContainerID)
	}
	if svc.lastIn.StartDate == nil || svc.lastIn.StartDate.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("start date not parsed: %v", svc.lastIn.StartDate)
	}
}

func TestCreateOrderRejectsUnknownFields(t *testing.T) {
	svc := &fakeOrdersService{created: orderDTO()}
	handler := CreateOrder(svc, nil)

	body := `{"container_id":"` + uuid.NewString() + `","type":"rent","start_date":"2026-03-01","total_price":"1"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("client-priced payloads must be rejected, got %d", rec.Code)
	}
}

func TestCreateOrderRejectsBadDate(t *testing.T) {
	handler := CreateOrder(&fakeOrdersService{created: orderDTO()}, nil)

	body := `{"container_id":"` + uuid.NewString() + `","type":"rent","start_date":"03/01/2026"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestCreateOrderUnavailableContainerReturns400(t *testing.T) {
	svc := &fakeOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "container is not available")}
	handler := CreateOrder(svc, nil)

	body := `{"container_id":"` + uuid.NewString() + `","type":"buy","start_date":"2026-03-01"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unavailable container, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "container is not available") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCreateOrderRequiresAuthContext(t *testing.T) {
	handler := CreateOrder(&fakeOrdersService{created: orderDTO()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth context, got %d", rec.Code)
	}
}

func TestGetOrderPropagatesForbidden(t *testing.T) {
	svc := &fakeOrdersService{err: pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")}
	router := chi.NewRouter()
	router.Get("/api/v1/orders/{id}", GetOrder(svc, nil))

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), "", uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteOrderReturnsStatus(t *testing.T) {
	svc := &fakeOrdersService{}
	router := chi.NewRouter()
	router.Delete("/api/v1/orders/{id}", DeleteOrder(svc, nil))

	id := uuid.New()
	req := authedRequest(http.MethodDelete, "/api/v1/orders/"+id.String(), "", uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != id {
		t.Fatalf("delete not forwarded: %v", svc.deleted)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data["status"] != "deleted" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	svc := &fakeOrdersService{created: orderDTO()}
	router := chi.NewRouter()
	router.Put("/api/v1/orders/{id}", UpdateOrder(svc, nil))

	body := `{"status":"teleported"}`
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+uuid.NewString(), body, uuid.New(), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}
