package models

import "time"

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

const (
	PaymentCashOnDelivery = "cod"
	PaymentCard           = "card"
)

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type Customer struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	PostalCode string `json:"postalCode,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ShippingInfo porte l'identifiant de l'option et son nom affiché.
type ShippingInfo struct {
	ID                string  `json:"id,omitempty"`
	Method            string  `json:"method"`
	Cost              float64 `json:"cost"`
	EstimatedDelivery string  `json:"estimatedDelivery"`
}

type PaymentInfo struct {
	Method       string  `json:"method,omitempty"`
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`
}

// OrderRequest est le corps de POST /api/orders.
type OrderRequest struct {
	Items      []OrderItem  `json:"items"`
	Customer   Customer     `json:"customer"`
	Shipping   ShippingInfo `json:"shipping"`
	Payment    PaymentInfo  `json:"payment"`
	CouponCode string       `json:"couponCode,omitempty"`
}

type StatusEvent struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type Order struct {
	TrackingCode    string        `json:"trackingCode"`
	Items           []OrderItem   `json:"items"`
	Customer        Customer      `json:"customer"`
	Shipping        ShippingInfo  `json:"shipping"`
	Payment         PaymentInfo   `json:"payment"`
	CouponCode      string        `json:"couponCode,omitempty"`
	Status          string        `json:"status"`
	History         []StatusEvent `json:"history"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OrderResponse est la réponse de POST /api/orders.
type OrderResponse struct {
	TrackingCode string `json:"trackingCode,omitempty"`
	Order        *Order `json:"order,omitempty"`
	Replayed     bool   `json:"replayed,omitempty"`
	Error        string `json:"error,omitempty"`
}

// LastOrder est l'instantané lu par la page de confirmation.
type LastOrder struct {
	TrackingCode string       `json:"trackingCode"`
	Customer     Customer     `json:"customer"`
	Shipping     ShippingInfo `json:"shipping"`
	Items        []OrderItem  `json:"items"`
	Payment      PaymentInfo  `json:"payment"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// TrackingStep est une étape de la frise de suivi.
type TrackingStep struct {
	Status  string     `json:"status"`
	Label   string     `json:"label"`
	Reached bool       `json:"reached"`
	At      *time.Time `json:"at,omitempty"`
}
