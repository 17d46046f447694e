package utils

import "html/template"

const emailLayout = `{{define "layout"}}<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
	<table role="presentation" style="width:100%;border-collapse:collapse;">
		<tr><td style="padding:40px 20px;">
			<table role="presentation" style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:12px;">
				<tr><td style="background:#2d1b14;padding:32px;text-align:center;border-radius:12px 12px 0 0;">
					<h1 style="margin:0;color:#f3d9a4;font-size:26px;">{{.Shop}}</h1>
					<p style="margin:8px 0 0;color:#ffffff;">{{.Title}}</p>
				</td></tr>
				<tr><td style="padding:30px;">{{template "content" .}}</td></tr>
				<tr><td style="padding:20px;text-align:center;color:#9ca3af;font-size:12px;">
					Code de suivi : <strong>{{.TrackingCode}}</strong><br>
					<a href="{{.TrackURL}}" style="color:#b45309;">Suivre ma commande</a>
				</td></tr>
			</table>
		</td></tr>
	</table>
</body>
</html>{{end}}`

const confirmationContent = `{{define "content"}}
<p>Bonjour {{.Customer.Name}},</p>
<p>Merci pour votre commande ! Nous l'avons bien reçue.</p>
<table style="width:100%;border-collapse:collapse;margin:20px 0;">
	<thead><tr style="background:#f9fafb;">
		<th align="left">Article</th><th>Qté</th><th align="right">Prix</th><th align="right">Total</th>
	</tr></thead>
	<tbody>
	{{range .Items}}<tr>
		<td>{{.Name}}{{if .Variant}} <small>({{.Variant}})</small>{{end}}</td>
		<td align="center">{{.Quantity}}</td>
		<td align="right">{{.UnitPrice}}</td>
		<td align="right">{{.LineTotal}}</td>
	</tr>{{end}}
	</tbody>
</table>
<p>Sous-total : {{.Subtotal}}<br>
{{if .HasDiscount}}Réduction{{if .CouponCode}} ({{.CouponCode}}){{end}} : -{{.Discount}}<br>{{end}}
Livraison ({{.ShippingMethod}}) : {{.ShippingCost}}<br>
<strong>Total : {{.Total}}</strong></p>
<p>Paiement : {{.PaymentMethod}}<br>Livraison estimée : {{.EstimatedDelivery}}</p>
<p>Adresse : {{.Customer.Address}}, {{.Customer.City}}</p>
{{if .QRCID}}<p style="text-align:center;"><img src="cid:{{.QRCID}}" alt="QR de suivi" width="160" height="160"></p>{{end}}
{{end}}`

const statusContent = `{{define "content"}}
<p>Bonjour {{.Customer.Name}},</p>
<p style="text-align:center;">
	<span style="display:inline-block;padding:10px 22px;background:{{.Color}};color:#ffffff;border-radius:25px;font-weight:600;">{{.StatusLabel}}</span>
</p>
<p>{{.Message}}</p>
{{end}}`

const invoiceDocument = `<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Facture {{.TrackingCode}}</title>
	<style>
		body { font-family: Arial, sans-serif; margin: 40px; color: #111827; }
		h1 { color: #2d1b14; }
		table { width: 100%; border-collapse: collapse; margin-top: 24px; }
		th, td { border-bottom: 1px solid #e5e7eb; padding: 8px; }
		.total { font-size: 18px; font-weight: bold; }
	</style>
</head>
<body>
	<h1>{{.Shop}} · Facture</h1>
	<p>Commande {{.TrackingCode}} du {{.Date}}</p>
	<p>{{.Customer.Name}}<br>{{.Customer.Address}}<br>{{.Customer.City}} {{.Customer.PostalCode}}<br>{{.Customer.Phone}}</p>
	<table>
		<tr><th align="left">Article</th><th>Qté</th><th align="right">Prix</th><th align="right">Total</th></tr>
		{{range .Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>{{end}}
	</table>
	<p>Sous-total : {{.Subtotal}}<br>
	{{if .HasDiscount}}Réduction : -{{.Discount}}<br>{{end}}
	Livraison : {{.ShippingCost}}</p>
	<p class="total">Total : {{.Total}}</p>
	{{if .QRDataURI}}<img src="{{.QRDataURI}}" width="120" height="120" alt="QR">{{end}}
</body>
</html>`

var (
	confirmationTemplate = template.Must(template.Must(template.New("layout").Parse(emailLayout)).Parse(confirmationContent))
	statusTemplate       = template.Must(template.Must(template.New("layout").Parse(emailLayout)).Parse(statusContent))
	invoiceTemplate      = template.Must(template.New("invoice").Parse(invoiceDocument))
)
