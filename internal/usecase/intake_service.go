package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"madhughor-backend/internal/domain"

	"github.com/sirupsen/logrus"
)

var (
	phonePattern = regexp.MustCompile(`^01[0-9]{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type OrderRepo interface {
	// InsertOrder persists the order, assigns its id and order number and
	// returns the order number. Number format is owned by the store.
	InsertOrder(o *domain.Order) (string, error)
}

type ProductRepo interface {
	GetActiveVariation(id string) (*domain.ProductVariation, bool, error)
}

// RateLimiter is the narrow contract over the store-side
// check_rate_limit procedure. The bucketing algorithm lives behind it.
type RateLimiter interface {
	Allow(ip, action string) (bool, error)
}

// CartConverter marks an abandoned cart as converted once the matching
// order exists. Best-effort only.
type CartConverter interface {
	Convert(id string) error
}

const actionOrderSubmission = "order_submission"

type SubmitOrderRequest struct {
	CustomerName       string   `json:"customer_name"`
	Phone              string   `json:"phone"`
	Email              string   `json:"email"`
	DistrictID         string   `json:"district_id"`
	Area               string   `json:"area"`
	FullAddress        string   `json:"full_address"`
	ProductVariationID string   `json:"product_variation_id"`
	Quantity           *float64 `json:"quantity"`
	UnitPrice          *float64 `json:"unit_price"`
	DeliveryCharge     *float64 `json:"delivery_charge"`
	TotalAmount        *float64 `json:"total_amount"`
	PaymentMethod      string   `json:"payment_method"`
	UserAgent          string   `json:"user_agent"`
	ReferrerURL        string   `json:"referrer_url"`
	VisitorSessionID   string   `json:"visitor_session_id"`
	AbandonedCartID    string   `json:"abandoned_cart_id"`

	// validated fields whose JSON value carried the wrong type, keyed by
	// the error label. The ordered validation reports them in sequence.
	wrongType map[string]bool
}

// UnmarshalJSON accepts any JSON type per field. A wrong-typed value is
// not a decode failure: it surfaces as that field's "Invalid ..." error,
// so the client learns which input to fix instead of getting a 500.
func (r *SubmitOrderRequest) UnmarshalJSON(data []byte) error {
	var w struct {
		CustomerName       any `json:"customer_name"`
		Phone              any `json:"phone"`
		Email              any `json:"email"`
		DistrictID         any `json:"district_id"`
		Area               any `json:"area"`
		FullAddress        any `json:"full_address"`
		ProductVariationID any `json:"product_variation_id"`
		Quantity           any `json:"quantity"`
		UnitPrice          any `json:"unit_price"`
		DeliveryCharge     any `json:"delivery_charge"`
		TotalAmount        any `json:"total_amount"`
		PaymentMethod      any `json:"payment_method"`
		UserAgent          any `json:"user_agent"`
		ReferrerURL        any `json:"referrer_url"`
		VisitorSessionID   any `json:"visitor_session_id"`
		AbandonedCartID    any `json:"abandoned_cart_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.wrongType = map[string]bool{}
	r.CustomerName = r.str(w.CustomerName, "name")
	r.Phone = r.str(w.Phone, "phone")
	r.Email = r.str(w.Email, "email")
	r.DistrictID = r.str(w.DistrictID, "")
	r.Area = r.str(w.Area, "")
	r.FullAddress = r.str(w.FullAddress, "address")
	r.ProductVariationID = r.str(w.ProductVariationID, "product")
	r.Quantity = r.num(w.Quantity, "quantity")
	r.UnitPrice = r.num(w.UnitPrice, "price")
	r.DeliveryCharge = r.num(w.DeliveryCharge, "")
	r.TotalAmount = r.num(w.TotalAmount, "total")
	r.PaymentMethod = r.str(w.PaymentMethod, "")
	r.UserAgent = r.str(w.UserAgent, "")
	r.ReferrerURL = r.str(w.ReferrerURL, "")
	r.VisitorSessionID = r.str(w.VisitorSessionID, "")
	r.AbandonedCartID = r.str(w.AbandonedCartID, "")
	return nil
}

func (r *SubmitOrderRequest) str(v any, field string) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	if field != "" {
		r.wrongType[field] = true
	}
	return ""
}

func (r *SubmitOrderRequest) num(v any, field string) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f := n
		return &f
	}
	if field != "" {
		r.wrongType[field] = true
	}
	return nil
}

// OrderIntakeService turns an untrusted order submission into a
// confirmed order row: ordered field validation, rate-limit check,
// product re-verification, insert, then cart reconciliation.
type OrderIntakeService struct {
	Orders   OrderRepo
	Products ProductRepo
	Limiter  RateLimiter
	Carts    CartConverter
	Log      *logrus.Logger
}

// Submit runs the full intake pipeline. clientIP is the already-extracted
// forwarding address ("unknown" when absent). On success it returns the
// store-assigned order number.
func (s *OrderIntakeService) Submit(req *SubmitOrderRequest, clientIP string) (string, error) {
	if err := validateSubmission(req); err != nil {
		return "", err
	}

	allowed, err := s.Limiter.Allow(clientIP, actionOrderSubmission)
	if err != nil {
		// Fail closed: an unreachable limiter denies rather than letting
		// a flood through.
		s.logger().WithError(err).Warn("rate limit check failed")
		return "", ErrRateLimited{}
	}
	if !allowed {
		return "", ErrRateLimited{}
	}

	pv, ok, err := s.Products.GetActiveVariation(strings.TrimSpace(req.ProductVariationID))
	if err != nil {
		return "", fmt.Errorf("verify product: %w", err)
	}
	if !ok {
		return "", ErrInvalidField("product")
	}

	o := buildOrder(req, pv, clientIP)
	number, err := s.Orders.InsertOrder(o)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	// Reconciliation only; a missed conversion leaves the cart in the
	// uncompleted list, it never fails the order.
	if id := strings.TrimSpace(req.AbandonedCartID); id != "" {
		if err := s.Carts.Convert(id); err != nil {
			s.logger().WithError(err).WithField("cart_id", id).Warn("abandoned cart conversion failed")
		}
	}
	return number, nil
}

// validateSubmission applies the fixed check sequence; the first failure
// is returned and nothing is written.
func validateSubmission(req *SubmitOrderRequest) error {
	name := strings.TrimSpace(req.CustomerName)
	if req.wrongType["name"] || name == "" || utf8.RuneCountInString(name) > 200 {
		return ErrInvalidField("name")
	}
	if req.wrongType["phone"] || !phonePattern.MatchString(strings.TrimSpace(req.Phone)) {
		return ErrInvalidField("phone")
	}
	if req.wrongType["email"] {
		return ErrInvalidField("email")
	}
	if email := strings.TrimSpace(req.Email); email != "" && !emailPattern.MatchString(email) {
		return ErrInvalidField("email")
	}
	addr := strings.TrimSpace(req.FullAddress)
	if req.wrongType["address"] || addr == "" || utf8.RuneCountInString(addr) > 1000 {
		return ErrInvalidField("address")
	}
	if req.wrongType["product"] || strings.TrimSpace(req.ProductVariationID) == "" {
		return ErrInvalidField("product")
	}
	if req.wrongType["quantity"] || req.Quantity == nil || *req.Quantity != float64(int(*req.Quantity)) || *req.Quantity < 1 || *req.Quantity > 10 {
		return ErrInvalidField("quantity")
	}
	if req.wrongType["price"] || req.UnitPrice == nil || *req.UnitPrice < 0 {
		return ErrInvalidField("price")
	}
	if req.wrongType["total"] || req.TotalAmount == nil || *req.TotalAmount < 0 {
		return ErrInvalidField("total")
	}
	return nil
}

func buildOrder(req *SubmitOrderRequest, pv *domain.ProductVariation, clientIP string) *domain.Order {
	quantity := int(*req.Quantity)
	delivery := 0.0
	if req.DeliveryCharge != nil && *req.DeliveryCharge > 0 {
		delivery = *req.DeliveryCharge
	}
	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		payment = "cod"
	}
	// Snapshot of what the discount actually was, so reporting never has
	// to guess it back from delivery_charge later.
	discount := *req.UnitPrice*float64(quantity) + delivery - *req.TotalAmount
	if discount < 0 {
		discount = 0
	}
	return &domain.Order{
		CustomerName:       strings.TrimSpace(req.CustomerName),
		Phone:              strings.TrimSpace(req.Phone),
		Email:              strings.TrimSpace(req.Email),
		DistrictID:         strings.TrimSpace(req.DistrictID),
		Area:               truncate(strings.TrimSpace(req.Area), 500),
		FullAddress:        strings.TrimSpace(req.FullAddress),
		ProductVariationID: pv.ID,
		Quantity:           quantity,
		UnitPrice:          *req.UnitPrice,
		DeliveryCharge:     delivery,
		TotalAmount:        *req.TotalAmount,
		DiscountAmount:     discount,
		PaymentMethod:      payment,
		Status:             domain.OrderPending,
		IPAddress:          clientIP,
		UserAgent:          truncate(req.UserAgent, 500),
		ReferrerURL:        truncate(req.ReferrerURL, 2000),
		VisitorSessionID:   truncate(req.VisitorSessionID, 100),
	}
}

// truncate cuts at rune boundaries; Bengali text must never be split
// mid-codepoint.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func (s *OrderIntakeService) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
