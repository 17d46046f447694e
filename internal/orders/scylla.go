package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maeva_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaRepository stocke une commande par ligne de la table orders.
// Les sous-documents (articles, client, livraison, paiement, historique) sont sérialisés en JSON.
type ScyllaRepository struct {
	session *gocql.Session
}

func NewScyllaRepository(session *gocql.Session) *ScyllaRepository {
	return &ScyllaRepository{session: session}
}

func (r *ScyllaRepository) Insert(ctx context.Context, o models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}
	payment, err := json.Marshal(o.Payment)
	if err != nil {
		return err
	}
	history, err := json.Marshal(o.History)
	if err != nil {
		return err
	}

	return r.session.Query(`
		INSERT INTO orders (tracking_code, items, customer, shipping, payment, coupon_code,
			status, history, payment_intent_id, customer_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.TrackingCode, string(items), string(customer), string(shipping), string(payment), o.CouponCode,
		o.Status, string(history), o.PaymentIntentID, o.Customer.Email, o.CreatedAt, o.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaRepository) Get(ctx context.Context, trackingCode string) (*models.Order, error) {
	var (
		o                                           models.Order
		items, customer, shipping, payment, history string
	)
	err := r.session.Query(`
		SELECT tracking_code, items, customer, shipping, payment, coupon_code,
			status, history, payment_intent_id, created_at, updated_at
		FROM orders WHERE tracking_code = ?`, trackingCode,
	).WithContext(ctx).Scan(
		&o.TrackingCode, &items, &customer, &shipping, &payment, &o.CouponCode,
		&o.Status, &history, &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, part := range []struct {
		raw string
		dst any
	}{
		{items, &o.Items},
		{customer, &o.Customer},
		{shipping, &o.Shipping},
		{payment, &o.Payment},
		{history, &o.History},
	} {
		if part.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(part.raw), part.dst); err != nil {
			return nil, fmt.Errorf("commande %s illisible: %w", trackingCode, err)
		}
	}
	return &o, nil
}

func (r *ScyllaRepository) UpdateStatus(ctx context.Context, trackingCode, status string, history []models.StatusEvent, updatedAt time.Time) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	applied, err := r.session.Query(`
		UPDATE orders SET status = ?, history = ?, updated_at = ?
		WHERE tracking_code = ? IF EXISTS`,
		status, string(data), updatedAt, trackingCode,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (r *ScyllaRepository) SetPaymentIntent(ctx context.Context, trackingCode, intentID string) error {
	return r.session.Query(`UPDATE orders SET payment_intent_id = ? WHERE tracking_code = ?`,
		intentID, trackingCode,
	).WithContext(ctx).Exec()
}
