package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maeva_back_end/internal/cart"
	"maeva_back_end/internal/checkout"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/models"
	"maeva_back_end/internal/orders"
	"maeva_back_end/internal/shipping"

	"github.com/sirupsen/logrus"
)

func setup(t *testing.T, handler http.HandlerFunc) (*checkout.Service, *cart.Service) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := cart.NewMemoryPersister()
	carts := cart.NewService(store, cart.Options{}, logger)
	svc := checkout.NewService(checkout.Deps{
		Carts:    carts,
		Store:    store,
		Shipping: shipping.NewCatalog(),
		Coupons:  coupon.NewStatic(map[string]float64{"SAVE10": 10}),
		Orders:   orders.NewClient(srv.URL, time.Second, logger),
		Logger:   logger,
	})
	return svc, carts
}

var customer = models.Customer{
	Name:    "Amina Benali",
	Address: "12 rue Didouche Mourad",
	City:    "Alger",
	Phone:   "0550123456",
	Email:   "amina@example.dz",
}

func TestCheckoutAgainstOrderEndpoint(t *testing.T) {
	var received models.OrderRequest
	svc, carts := setup(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.OrderResponse{TrackingCode: "TRK1"})
	})
	ctx := context.Background()
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Name: "Robe", Price: 500, Quantity: 2})

	res, err := svc.Submit(ctx, "s1", "", checkout.Request{Customer: customer, ShippingMethod: shipping.Standard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TrackingCode != "TRK1" || received.Payment.Total != 1500 {
		t.Errorf("unexpected result %+v / payload %+v", res, received.Payment)
	}
	if got := carts.Get(ctx, "s1"); len(got.Items) != 0 {
		t.Errorf("cart should be empty, got %+v", got)
	}
	if last, _ := svc.LastOrder(ctx, "s1"); last == nil || last.TrackingCode != "TRK1" {
		t.Errorf("expected last order TRK1, got %+v", last)
	}
}

func TestCheckoutOrderEndpointFailure(t *testing.T) {
	svc, carts := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Service indisponible"}`))
	})
	ctx := context.Background()
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})

	_, err := svc.Submit(ctx, "s1", "", checkout.Request{Customer: customer, ShippingMethod: shipping.Standard})
	var serr *checkout.SubmitError
	if !errors.As(err, &serr) || serr.Message != "Service indisponible" {
		t.Fatalf("expected upstream message, got %v", err)
	}

	got := carts.Get(ctx, "s1")
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("cart must be unchanged, got %+v", got)
	}
}
