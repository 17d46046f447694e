package checkout

import (
	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"

	"github.com/shopspring/decimal"
)

// BuildOrder assemble la requête de création de commande à partir des lignes du panier.
// total = sous-total + livraison − remise, jamais négatif.
func BuildOrder(lines []models.CartLine, customer models.Customer, opt models.ShippingOption,
	discount float64, method, couponCode string) models.OrderRequest {

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
			Size:      l.Size,
			Color:     l.Color,
		})
		subtotal = subtotal.Add(money.LineTotal(l.Price, l.Quantity))
	}

	d := decimal.NewFromFloat(discount)
	if d.IsNegative() {
		d = decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	shippingCost := decimal.NewFromFloat(opt.Price)

	total := subtotal.Add(shippingCost).Sub(d)
	if total.IsNegative() {
		total = decimal.Zero
	}

	if method == "" {
		method = models.PaymentCashOnDelivery
	}

	return models.OrderRequest{
		Items:    items,
		Customer: customer,
		Shipping: models.ShippingInfo{
			ID:                opt.ID,
			Method:            opt.Name,
			Cost:              money.Float(shippingCost),
			EstimatedDelivery: opt.EstimatedDelivery,
		},
		Payment: models.PaymentInfo{
			Method:       method,
			Subtotal:     money.Float(subtotal),
			Discount:     money.Float(d),
			ShippingCost: money.Float(shippingCost),
			Total:        money.Float(total),
		},
		CouponCode: couponCode,
	}
}
