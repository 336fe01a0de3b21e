package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known lifecycle states.
// Transitions between states are free-form; only the value set is fixed.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID                 string      `json:"id"`
	OrderNumber        string      `json:"orderNumber"`
	CustomerName       string      `json:"customerName"`
	Phone              string      `json:"phone"`
	Email              string      `json:"email,omitempty"`
	DistrictID         string      `json:"districtId,omitempty"`
	Area               string      `json:"area,omitempty"`
	FullAddress        string      `json:"fullAddress"`
	ProductVariationID string      `json:"productVariationId"`
	Quantity           int         `json:"quantity"`
	UnitPrice          float64     `json:"unitPrice"`
	DeliveryCharge     float64     `json:"deliveryCharge"`
	TotalAmount        float64     `json:"totalAmount"`
	DiscountAmount     float64     `json:"discountAmount"`
	PaymentMethod      string      `json:"paymentMethod"`
	Status             OrderStatus `json:"status"`
	IPAddress          string      `json:"ipAddress,omitempty"`
	UserAgent          string      `json:"-"`
	ReferrerURL        string      `json:"-"`
	VisitorSessionID   string      `json:"-"`
	ConfirmedAt        *time.Time  `json:"confirmedAt,omitempty"`
	ProcessingAt       *time.Time  `json:"processingAt,omitempty"`
	ShippedAt          *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt        *time.Time  `json:"deliveredAt,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}
