package domain

import "time"

// AbandonedCart holds partial order form state saved before submission.
// All customer fields are optional; the row exists so sales staff can
// follow up on forms that never turned into an order.
type AbandonedCart struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"sessionId,omitempty"`
	CustomerName       string    `json:"customerName,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Email              string    `json:"email,omitempty"`
	DistrictID         string    `json:"districtId,omitempty"`
	Area               string    `json:"area,omitempty"`
	FullAddress        string    `json:"fullAddress,omitempty"`
	ProductVariationID string    `json:"productVariationId,omitempty"`
	Quantity           int       `json:"quantity"`
	UserAgent          string    `json:"-"`
	ReferrerURL        string    `json:"-"`
	IsConverted        bool      `json:"isConverted"`
	Contacted          bool      `json:"contacted"`
	ContactNotes       string    `json:"contactNotes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
