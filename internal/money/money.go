// Package money regroupe les calculs de montants (DZD) sur des décimaux exacts.
package money

import "github.com/shopspring/decimal"

// LineTotal retourne price × quantity.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// Percent retourne pct % de amount.
func Percent(amount decimal.Decimal, pct float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))
}

// Float arrondit au centime et convertit pour la sérialisation JSON.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Equal compare deux montants au centime près.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

// Cents convertit un montant en plus petite unité (centimes) pour les prestataires de paiement.
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Format affiche un montant pour les e-mails et factures, ex. "1500.00 DA".
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2) + " DA"
}
