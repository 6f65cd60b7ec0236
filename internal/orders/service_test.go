package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dkowalski/containerdepot-backend/internal/pricing"
	"github.com/dkowalski/containerdepot-backend/pkg/db/models"
	"github.com/dkowalski/containerdepot-backend/pkg/enums"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/outbox"
)

type stubRepo struct {
	orders      map[uuid.UUID]*models.Order
	addonLines  []models.OrderAddon
	createErr   error
	deleted     []uuid.UUID
	lastUpdates map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	order.ID = uuid.New()
	r.orders[order.ID] = order
	return order, nil
}

func (r *stubRepo) CreateOrderAddons(ctx context.Context, addons []models.OrderAddon) error {
	r.addonLines = append(r.addonLines, addons...)
	return nil
}

func (r *stubRepo) UpsertOrderAddon(ctx context.Context, addon models.OrderAddon) error {
	r.addonLines = append(r.addonLines, addon)
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *stubRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID == intentID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *stubRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (r *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if _, ok := r.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.lastUpdates = updates
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.orders, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCatalog struct {
	container *models.Container
	addons    []models.Addon
	err       error
}

func (c *stubCatalog) GetContainer(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.container, nil
}

func (c *stubCatalog) GetAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error) {
	return c.addons, nil
}

type stubAvailability struct {
	calls []bool
	ids   []uuid.UUID
	err   error
}

func (a *stubAvailability) Set(ctx context.Context, containerID uuid.UUID, available bool) error {
	a.calls = append(a.calls, available)
	a.ids = append(a.ids, containerID)
	return a.err
}

type stubOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (o *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if o.err != nil {
		return o.err
	}
	o.events = append(o.events, event)
	return nil
}

type stubMetrics struct {
	created []string
	deleted int
}

func (m *stubMetrics) IncCreated(orderType string) { m.created = append(m.created, orderType) }
func (m *stubMetrics) IncDeleted()                 { m.deleted++ }

type fixtures struct {
	repo         *stubRepo
	catalog      *stubCatalog
	availability *stubAvailability
	outbox       *stubOutbox
	metrics      *stubMetrics
	svc          Service
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	f := &fixtures{
		repo: newStubRepo(),
		catalog: &stubCatalog{
			container: &models.Container{
				ID:          uuid.New(),
				Title:       "20ft dry container",
				Location:    "Rotterdam",
				Price:       decimal.NewFromInt(100),
				IsAvailable: true,
			},
		},
		availability: &stubAvailability{},
		outbox:       &stubOutbox{},
		metrics:      &stubMetrics{},
	}
	svc, err := NewService(f.repo, stubTx{}, f.catalog, f.availability, f.outbox, f.metrics, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func date(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestCreateRentComputesTotalAndMarksUnavailable(t *testing.T) {
	f := newFixtures(t)
	userID := uuid.New()

	dto, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      userID,
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeRent,
		StartDate:   date(2026, 3, 1),
		EndDate:     date(2026, 3, 4),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !dto.TotalPrice.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("total = %s, want 300", dto.TotalPrice)
	}
	if dto.Status != enums.OrderStatusPending || dto.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("new order must start pending/pending, got %s/%s", dto.Status, dto.PaymentStatus)
	}
	if len(f.availability.calls) != 1 || f.availability.calls[0] != false {
		t.Fatalf("rental must set container unavailable, calls=%v", f.availability.calls)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected one order.created event, got %v", f.outbox.events)
	}
	if len(f.metrics.created) != 1 || f.metrics.created[0] != "rent" {
		t.Fatalf("metrics created = %v", f.metrics.created)
	}
}

func TestCreateBuyLeavesAvailabilityAlone(t *testing.T) {
	f := newFixtures(t)

	dto, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeBuy,
		StartDate:   date(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !dto.TotalPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("buy total = %s, want flat 100", dto.TotalPrice)
	}
	if len(f.availability.calls) != 0 {
		t.Fatalf("buy must not toggle availability, calls=%v", f.availability.calls)
	}
}

func TestCreateRejectsUnavailableContainer(t *testing.T) {
	f := newFixtures(t)
	f.catalog.container.IsAvailable = false

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeBuy,
		StartDate:   date(2026, 3, 1),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateRentRequiresEndDate(t *testing.T) {
	f := newFixtures(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeRent,
		StartDate:   date(2026, 3, 1),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Fatalf("no order should be persisted")
	}
}

func TestCreateAbortsWhenAddonUnknown(t *testing.T) {
	f := newFixtures(t)
	f.catalog.addons = []models.Addon{{
		ID:          uuid.New(),
		Name:        "Lockbox",
		Price:       decimal.NewFromInt(15),
		IsAvailable: true,
	}}

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeBuy,
		StartDate:   date(2026, 3, 1),
		Addons: []pricing.AddonSelection{
			{AddonID: f.catalog.addons[0].ID, Quantity: 1},
			{AddonID: uuid.New(), Quantity: 2},
		},
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.orders) != 0 || len(f.repo.addonLines) != 0 {
		t.Fatalf("nothing should persist when an addon line is rejected")
	}
}

func TestCreateSurvivesAvailabilityFailure(t *testing.T) {
	f := newFixtures(t)
	f.availability.err = fmt.Errorf("connection refused")

	dto, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeRent,
		StartDate:   date(2026, 3, 1),
		EndDate:     date(2026, 3, 2),
	})
	if err != nil {
		t.Fatalf("availability failure must not fail order creation: %v", err)
	}
	if _, ok := f.repo.orders[dto.ID]; !ok {
		t.Fatalf("order must persist despite availability failure")
	}
}

func TestCreateSurvivesOutboxFailure(t *testing.T) {
	f := newFixtures(t)
	f.outbox.err = fmt.Errorf("outbox table missing")

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		ContainerID: f.catalog.container.ID,
		Type:        enums.OrderTypeBuy,
		StartDate:   date(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("outbox failure must not fail order creation: %v", err)
	}
}

func TestGetRejectsForeignOrder(t *testing.T) {
	f := newFixtures(t)
	owner := uuid.New()
	stranger := uuid.New()
	order := &models.Order{UserID: owner, ContainerID: uuid.New(), Type: enums.OrderTypeBuy}
	f.repo.Create(context.Background(), order)

	_, err := f.svc.Get(context.Background(), order.ID, Requester{UserID: stranger, Role: enums.UserRoleUser})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := f.svc.Get(context.Background(), order.ID, Requester{UserID: stranger, Role: enums.UserRoleAdmin}); err != nil {
		t.Fatalf("admin must read any order: %v", err)
	}
}

func TestDeleteConfirmedRentalRestoresAvailability(t *testing.T) {
	f := newFixtures(t)
	owner := uuid.New()
	containerID := uuid.New()
	order := &models.Order{
		UserID:      owner,
		ContainerID: containerID,
		Type:        enums.OrderTypeRent,
		Status:      enums.OrderStatusConfirmed,
	}
	f.repo.Create(context.Background(), order)

	if err := f.svc.Delete(context.Background(), order.ID, Requester{UserID: owner, Role: enums.UserRoleUser}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.availability.calls) != 1 || f.availability.calls[0] != true {
		t.Fatalf("confirmed rental delete must restore availability, calls=%v", f.availability.calls)
	}
	if f.availability.ids[0] != containerID {
		t.Fatalf("availability restored on wrong container")
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderDeleted {
		t.Fatalf("expected order.deleted event, got %v", f.outbox.events)
	}
	if f.metrics.deleted != 1 {
		t.Fatalf("deleted metric = %d", f.metrics.deleted)
	}
}

func TestDeletePendingRentalLeavesAvailabilityAlone(t *testing.T) {
	f := newFixtures(t)
	owner := uuid.New()
	order := &models.Order{
		UserID:      owner,
		ContainerID: uuid.New(),
		Type:        enums.OrderTypeRent,
		Status:      enums.OrderStatusPending,
	}
	f.repo.Create(context.Background(), order)

	if err := f.svc.Delete(context.Background(), order.ID, Requester{UserID: owner, Role: enums.UserRoleUser}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.availability.calls) != 0 {
		t.Fatalf("pending delete must not toggle availability, calls=%v", f.availability.calls)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixtures(t)
	owner := uuid.New()
	order := &models.Order{UserID: owner, ContainerID: uuid.New(), Type: enums.OrderTypeBuy}
	f.repo.Create(context.Background(), order)

	bad := enums.OrderStatus("teleported")
	_, err := f.svc.Update(context.Background(), order.ID, Requester{UserID: owner, Role: enums.UserRoleUser}, UpdateInput{Status: &bad})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetUnknownOrderReturnsNotFound(t *testing.T) {
	f := newFixtures(t)

	_, err := f.svc.Get(context.Background(), uuid.New(), Requester{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
