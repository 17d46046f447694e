// Package coupon valide les codes promo.
package coupon

import (
	"context"
	"strings"

	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"

	"github.com/shopspring/decimal"
)

const MessageInvalid = "Code promo invalide"

// Validator est le service de validation appelé par le checkout et par
// GET /api/coupons/validate.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal float64) (models.CouponValidation, error)
}

// Static compare le code, sans tenir compte de la casse, à une table code → pourcentage.
type Static struct {
	rates map[string]float64
}

func NewStatic(rates map[string]float64) *Static {
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &Static{rates: normalized}
}

func (s *Static) Validate(ctx context.Context, code string, subtotal float64) (models.CouponValidation, error) {
	if err := ctx.Err(); err != nil {
		return models.CouponValidation{}, err
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	rate, ok := s.rates[normalized]
	if normalized == "" || !ok {
		return models.CouponValidation{
			Valid:        false,
			Code:         normalized,
			ErrorMessage: MessageInvalid,
		}, nil
	}

	discount := money.Percent(decimal.NewFromFloat(subtotal), rate)
	return models.CouponValidation{
		Valid:    true,
		Code:     normalized,
		Rate:     rate,
		Discount: money.Float(discount),
	}, nil
}
