package usecase

import (
	"strings"

	"madhughor-backend/internal/domain"

	"github.com/sirupsen/logrus"
)

type CartRepo interface {
	InsertCart(c *domain.AbandonedCart) (string, error)
	UpdateCart(id string, c *domain.AbandonedCart) error
	MarkConverted(id string) error
	ListUnconverted(page, pageSize int) ([]domain.AbandonedCart, int, error)
	SetContacted(id, notes string) error
}

type CartSavePayload struct {
	ID                 string   `json:"id"`
	SessionID          string   `json:"session_id"`
	CustomerName       string   `json:"customer_name"`
	Phone              string   `json:"phone"`
	Email              string   `json:"email"`
	DistrictID         string   `json:"district_id"`
	Area               string   `json:"area"`
	FullAddress        string   `json:"full_address"`
	ProductVariationID string   `json:"product_variation_id"`
	Quantity           *float64 `json:"quantity"`
	UserAgent          string   `json:"user_agent"`
	ReferrerURL        string   `json:"referrer_url"`
}

// CartService persists partial order form state. Saves are debounced
// client-side and may race with the unload handler; the upsert is
// last-write-wins on the whole row.
type CartService struct {
	Repo CartRepo
	Log  *logrus.Logger
}

// Save upserts a cart keyed by the id handed back on first save. Partial
// payloads are always accepted; fields are clamped and truncated, never
// rejected.
func (s *CartService) Save(p *CartSavePayload) (string, error) {
	c := cleanCart(p)
	if id := strings.TrimSpace(p.ID); id != "" {
		if err := s.Repo.UpdateCart(id, c); err != nil {
			s.logger().WithError(err).WithField("cart_id", id).Warn("abandoned cart update failed")
		}
		return id, nil
	}
	return s.Repo.InsertCart(c)
}

// Convert flags the cart as turned into an order. Idempotent and silent
// on failure; a miss only leaves the cart in the uncompleted list.
func (s *CartService) Convert(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if err := s.Repo.MarkConverted(id); err != nil {
		s.logger().WithError(err).WithField("cart_id", id).Warn("abandoned cart convert failed")
	}
	return nil
}

func cleanCart(p *CartSavePayload) *domain.AbandonedCart {
	quantity := 1
	if p.Quantity != nil {
		quantity = int(*p.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		if quantity > 10 {
			quantity = 10
		}
	}
	return &domain.AbandonedCart{
		SessionID:          truncate(p.SessionID, 100),
		CustomerName:       truncate(p.CustomerName, 200),
		Phone:              truncate(p.Phone, 20),
		Email:              truncate(p.Email, 255),
		DistrictID:         strings.TrimSpace(p.DistrictID),
		Area:               truncate(p.Area, 500),
		FullAddress:        truncate(p.FullAddress, 1000),
		ProductVariationID: strings.TrimSpace(p.ProductVariationID),
		Quantity:           quantity,
		UserAgent:          truncate(p.UserAgent, 500),
		ReferrerURL:        truncate(p.ReferrerURL, 2000),
	}
}

func (s *CartService) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
