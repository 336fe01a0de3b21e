package usecase

import (
	"strings"
	"time"

	"madhughor-backend/internal/domain"
)

type OrderAdminRepo interface {
	GetOrder(id string) (*domain.Order, bool)
	ListOrders(page, pageSize int) ([]domain.Order, int)
	UpdateOrderStatus(id string, status domain.OrderStatus, at time.Time) error
	UpdatePaymentMethod(id string, method string) error
	OrderStats() (*OrderStats, error)
}

type DistrictRepo interface {
	ListActiveDistricts() ([]domain.District, error)
}

type SettingsRepo interface {
	GetSetting(key string) (string, bool)
	PutSetting(key, value string) error
}

// OrderStats is the dashboard aggregate. Discounts come from the
// per-order snapshot taken at creation time, not from guessing off a
// zero delivery charge.
type OrderStats struct {
	TotalOrders      int            `json:"totalOrders"`
	ByStatus         map[string]int `json:"byStatus"`
	Revenue          float64        `json:"revenue"`
	DeliveryRevenue  float64        `json:"deliveryRevenue"`
	DiscountGiven    float64        `json:"discountGiven"`
	UncompletedCarts int            `json:"uncompletedCarts"`
}

// AdminService backs the order console: status changes, cart follow-up,
// dashboard aggregates and the landing-page settings store.
type AdminService struct {
	Orders    OrderAdminRepo
	Carts     CartRepo
	Districts DistrictRepo
	Settings  SettingsRepo
}

func (s *AdminService) ListOrders(page, pageSize int) ([]domain.Order, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Orders.ListOrders(page, pageSize)
}

// UpdateStatus sets any known status on any non-deleted order; the
// lifecycle imposes no transition ordering. The matching per-status
// timestamp is recorded as a side note, not a validity requirement.
func (s *AdminService) UpdateStatus(id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrBadRequest("invalid status")
	}
	o, ok := s.Orders.GetOrder(id)
	if !ok {
		return nil, ErrNotFound("order")
	}
	now := time.Now().UTC()
	if err := s.Orders.UpdateOrderStatus(id, status, now); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = now
	switch status {
	case domain.OrderConfirmed:
		o.ConfirmedAt = &now
	case domain.OrderProcessing:
		o.ProcessingAt = &now
	case domain.OrderShipped:
		o.ShippedAt = &now
	case domain.OrderDelivered:
		o.DeliveredAt = &now
	}
	return o, nil
}

func (s *AdminService) CorrectPaymentMethod(id, method string) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return ErrBadRequest("payment method required")
	}
	if _, ok := s.Orders.GetOrder(id); !ok {
		return ErrNotFound("order")
	}
	return s.Orders.UpdatePaymentMethod(id, method)
}

func (s *AdminService) UncompletedCarts(page, pageSize int) ([]domain.AbandonedCart, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Carts.ListUnconverted(page, pageSize)
}

func (s *AdminService) MarkContacted(id, notes string) error {
	if strings.TrimSpace(id) == "" {
		return ErrBadRequest("cart id required")
	}
	return s.Carts.SetContacted(id, truncate(notes, 2000))
}

func (s *AdminService) Stats() (*OrderStats, error) {
	stats, err := s.Orders.OrderStats()
	if err != nil {
		return nil, err
	}
	_, total, err := s.Carts.ListUnconverted(1, 1)
	if err == nil {
		stats.UncompletedCarts = total
	}
	return stats, nil
}

func (s *AdminService) ActiveDistricts() ([]domain.District, error) {
	return s.Districts.ListActiveDistricts()
}

func (s *AdminService) GetSetting(key string) (string, error) {
	v, ok := s.Settings.GetSetting(key)
	if !ok {
		return "", ErrNotFound("setting")
	}
	return v, nil
}

func (s *AdminService) PutSetting(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrBadRequest("setting key required")
	}
	return s.Settings.PutSetting(key, value)
}
