package models

type ShippingOption struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	EstimatedDelivery string  `json:"estimatedDelivery"`
}
