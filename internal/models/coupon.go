package models

type CouponValidation struct {
	Valid        bool    `json:"valid"`
	Code         string  `json:"code"`
	Rate         float64 `json:"rate"` // pourcentage
	Discount     float64 `json:"discount"`
	ErrorMessage string  `json:"error_message,omitempty"`
}
