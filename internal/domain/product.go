package domain

import "time"

// ProductVariation is read-only reference data for order intake: the
// service re-fetches price and active flag at submission time instead of
// trusting what the client saw at page load.
type ProductVariation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameBn    string    `json:"nameBn"`
	Size      string    `json:"size"`
	SizeBn    string    `json:"sizeBn"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"isActive"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

type District struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	NameBn                string  `json:"nameBn"`
	DeliveryCharge        float64 `json:"deliveryCharge"`
	EstimatedDeliveryDays int     `json:"estimatedDeliveryDays"`
	IsDhakaMetro          bool    `json:"isDhakaMetro"`
	IsActive              bool    `json:"isActive"`
}
