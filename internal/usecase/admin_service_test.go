package usecase_test

import (
	"testing"

	"madhughor-backend/internal/domain"
	"madhughor-backend/internal/infrastructure/repo"
	"madhughor-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFixture() (*usecase.AdminService, *repo.MemoryOrderRepo, *repo.MemoryCartRepo) {
	orders := repo.NewMemoryOrderRepo()
	carts := repo.NewMemoryCartRepo()
	districts := repo.NewMemoryDistrictRepo()
	districts.PutDistrict(domain.District{ID: "d-1", Name: "Dhaka", IsActive: true})
	districts.PutDistrict(domain.District{ID: "d-2", Name: "Barishal", IsActive: false})
	return &usecase.AdminService{
		Orders:    orders,
		Carts:     carts,
		Districts: districts,
		Settings:  repo.NewMemorySettingsRepo(),
	}, orders, carts
}

func seedOrder(t *testing.T, orders *repo.MemoryOrderRepo, total, delivery, discount float64) *domain.Order {
	t.Helper()
	o := &domain.Order{
		CustomerName:   "Karim Rahman",
		Phone:          "01812345678",
		FullAddress:    "12 Gulshan Ave, Dhaka",
		Quantity:       1,
		UnitPrice:      total - delivery + discount,
		DeliveryCharge: delivery,
		TotalAmount:    total,
		DiscountAmount: discount,
		Status:         domain.OrderPending,
		PaymentMethod:  "cod",
	}
	_, err := orders.InsertOrder(o)
	require.NoError(t, err)
	return o
}

func TestUpdateStatus_RecordsTimestamp(t *testing.T) {
	svc, orders, _ := newAdminFixture()
	o := seedOrder(t, orders, 1000, 0, 0)

	updated, err := svc.UpdateStatus(o.ID, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, updated.Status)
	require.NotNil(t, updated.ShippedAt)

	stored, ok := orders.GetOrder(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderShipped, stored.Status)
	assert.NotNil(t, stored.ShippedAt)
}

func TestUpdateStatus_NoTransitionOrdering(t *testing.T) {
	svc, orders, _ := newAdminFixture()
	o := seedOrder(t, orders, 1000, 0, 0)

	// delivered straight from pending, then back to confirmed
	_, err := svc.UpdateStatus(o.ID, domain.OrderDelivered)
	require.NoError(t, err)
	updated, err := svc.UpdateStatus(o.ID, domain.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, updated.Status)
	assert.NotNil(t, updated.DeliveredAt, "earlier timestamps are kept")
}

func TestUpdateStatus_Rejections(t *testing.T) {
	svc, orders, _ := newAdminFixture()
	o := seedOrder(t, orders, 1000, 0, 0)

	_, err := svc.UpdateStatus(o.ID, "refunded")
	var badRequest usecase.ErrBadRequest
	assert.ErrorAs(t, err, &badRequest)

	_, err = svc.UpdateStatus("order-404", domain.OrderConfirmed)
	var notFound usecase.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestCorrectPaymentMethod(t *testing.T) {
	svc, orders, _ := newAdminFixture()
	o := seedOrder(t, orders, 1000, 0, 0)

	require.NoError(t, svc.CorrectPaymentMethod(o.ID, "bkash"))
	stored, _ := orders.GetOrder(o.ID)
	assert.Equal(t, "bkash", stored.PaymentMethod)

	var badRequest usecase.ErrBadRequest
	assert.ErrorAs(t, svc.CorrectPaymentMethod(o.ID, "  "), &badRequest)
	var notFound usecase.ErrNotFound
	assert.ErrorAs(t, svc.CorrectPaymentMethod("order-404", "bkash"), &notFound)
}

func TestStats_AggregatesOrdersAndCarts(t *testing.T) {
	svc, orders, carts := newAdminFixture()
	seedOrder(t, orders, 1000, 100, 0)
	seedOrder(t, orders, 1900, 120, 220)
	o := seedOrder(t, orders, 500, 0, 0)
	_, err := svc.UpdateStatus(o.ID, domain.OrderDelivered)
	require.NoError(t, err)

	id, err := carts.InsertCart(&domain.AbandonedCart{SessionID: "s1"})
	require.NoError(t, err)
	_, err = carts.InsertCart(&domain.AbandonedCart{SessionID: "s2"})
	require.NoError(t, err)
	require.NoError(t, carts.MarkConverted(id))

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.ByStatus["pending"])
	assert.Equal(t, 1, stats.ByStatus["delivered"])
	assert.Equal(t, 3400.0, stats.Revenue)
	assert.Equal(t, 220.0, stats.DeliveryRevenue)
	assert.Equal(t, 220.0, stats.DiscountGiven)
	assert.Equal(t, 1, stats.UncompletedCarts)
}

func TestListOrders_Paging(t *testing.T) {
	svc, orders, _ := newAdminFixture()
	for i := 0; i < 25; i++ {
		seedOrder(t, orders, 1000, 0, 0)
	}

	page, total := svc.ListOrders(1, 10)
	assert.Len(t, page, 10)
	assert.Equal(t, 25, total)

	page, _ = svc.ListOrders(3, 10)
	assert.Len(t, page, 5)

	// out-of-range values fall back to defaults
	page, _ = svc.ListOrders(-1, 1000)
	assert.Len(t, page, 20)
}

func TestMarkContacted(t *testing.T) {
	svc, _, carts := newAdminFixture()
	id, err := carts.InsertCart(&domain.AbandonedCart{SessionID: "s1"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkContacted(id, "called, will order tomorrow"))
	c, ok := carts.Get(id)
	require.True(t, ok)
	assert.True(t, c.Contacted)
	assert.Equal(t, "called, will order tomorrow", c.ContactNotes)

	var badRequest usecase.ErrBadRequest
	assert.ErrorAs(t, svc.MarkContacted(" ", "x"), &badRequest)
}

func TestActiveDistricts(t *testing.T) {
	svc, _, _ := newAdminFixture()
	ds, err := svc.ActiveDistricts()
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "Dhaka", ds[0].Name)
}

func TestSettings_RoundTrip(t *testing.T) {
	svc, _, _ := newAdminFixture()

	_, err := svc.GetSetting("hero_title")
	var notFound usecase.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	require.NoError(t, svc.PutSetting("hero_title", "খাঁটি মধু"))
	v, err := svc.GetSetting("hero_title")
	require.NoError(t, err)
	assert.Equal(t, "খাঁটি মধু", v)

	var badRequest usecase.ErrBadRequest
	assert.ErrorAs(t, svc.PutSetting("", "x"), &badRequest)
}
