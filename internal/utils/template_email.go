package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"
	"maeva_back_end/internal/orders"
)

type emailItem struct {
	Name      string
	Variant   string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// orderEmailData alimente les gabarits d'e-mail et de facture.
type orderEmailData struct {
	Shop         string
	Title        string
	TrackingCode string
	TrackURL     string
	Date         string
	Customer     models.Customer
	Items        []emailItem

	Subtotal          string
	Discount          string
	HasDiscount       bool
	CouponCode        string
	ShippingMethod    string
	ShippingCost      string
	EstimatedDelivery string
	Total             string
	PaymentMethod     string

	QRCID     string
	QRDataURI template.URL

	StatusLabel string
	Message     string
	Color       string
}

// TrackingURL retourne le lien public de suivi d'une commande.
func TrackingURL(frontendURL, trackingCode string) string {
	return strings.TrimRight(frontendURL, "/") + "/suivi/" + trackingCode
}

func paymentLabel(method string) string {
	if method == models.PaymentCard {
		return "Carte bancaire"
	}
	return "Paiement à la livraison"
}

func newOrderEmailData(shop, frontendURL string, o models.Order) orderEmailData {
	items := make([]emailItem, 0, len(o.Items))
	for _, it := range o.Items {
		variant := strings.Trim(strings.Join([]string{it.Size, it.Color}, " / "), " /")
		items = append(items, emailItem{
			Name:      it.Name,
			Variant:   variant,
			Quantity:  it.Quantity,
			UnitPrice: money.Format(it.Price),
			LineTotal: money.Format(money.Float(money.LineTotal(it.Price, it.Quantity))),
		})
	}

	return orderEmailData{
		Shop:              shop,
		TrackingCode:      o.TrackingCode,
		TrackURL:          TrackingURL(frontendURL, o.TrackingCode),
		Date:              o.CreatedAt.Format("02/01/2006"),
		Customer:          o.Customer,
		Items:             items,
		Subtotal:          money.Format(o.Payment.Subtotal),
		Discount:          money.Format(o.Payment.Discount),
		HasDiscount:       o.Payment.Discount > 0,
		CouponCode:        o.CouponCode,
		ShippingMethod:    o.Shipping.Method,
		ShippingCost:      money.Format(o.Shipping.Cost),
		EstimatedDelivery: o.Shipping.EstimatedDelivery,
		Total:             money.Format(o.Payment.Total),
		PaymentMethod:     paymentLabel(o.Payment.Method),
	}
}

func execute(tmpl *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exécution du template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderOrderConfirmation génère le HTML de confirmation ; qrCID référence l'image QR intégrée.
func RenderOrderConfirmation(shop, frontendURL string, o models.Order, qrCID string) (string, error) {
	data := newOrderEmailData(shop, frontendURL, o)
	data.Title = "Confirmation de commande"
	data.QRCID = qrCID
	return execute(confirmationTemplate, "layout", data)
}

// RenderStatusEmail génère le HTML de notification de changement de statut.
func RenderStatusEmail(shop, frontendURL string, o models.Order) (string, error) {
	data := newOrderEmailData(shop, frontendURL, o)
	data.Title = "Mise à jour de votre commande"
	data.StatusLabel = orders.StatusLabel(o.Status)
	data.Message = statusMessage(o.Status)
	data.Color = statusColor(o.Status)
	return execute(statusTemplate, "layout", data)
}

// RenderInvoiceHTML génère la facture imprimable ; qrDataURI peut être vide.
func RenderInvoiceHTML(shop string, o models.Order, qrDataURI string) (string, error) {
	data := newOrderEmailData(shop, "", o)
	data.QRDataURI = template.URL(qrDataURI)
	return execute(invoiceTemplate, "invoice", data)
}
