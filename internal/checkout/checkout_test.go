package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"maeva_back_end/internal/cart"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"
	"maeva_back_end/internal/shipping"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeCreator enregistre les appels et renvoie une réponse fixe.
type fakeCreator struct {
	code  string
	err   error
	keys  []string
	calls []models.OrderRequest
}

func (f *fakeCreator) CreateOrder(_ context.Context, key string, req models.OrderRequest) (*models.OrderResponse, error) {
	f.keys = append(f.keys, key)
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.OrderResponse{TrackingCode: f.code}, nil
}

type fakePayments struct {
	amount float64
	err    error
}

func (f *fakePayments) StartPayment(_ context.Context, _ string, amount float64) (string, error) {
	f.amount = amount
	if f.err != nil {
		return "", f.err
	}
	return "pi_secret", nil
}

type upstreamErr struct{}

func (upstreamErr) Error() string         { return "upstream 409" }
func (upstreamErr) PublicMessage() string { return "Commande déjà en cours" }
func (upstreamErr) HTTPStatus() int       { return 409 }

func newTestService(creator OrderCreator) (*Service, *cart.Service, *cart.MemoryPersister) {
	store := cart.NewMemoryPersister()
	carts := cart.NewService(store, cart.Options{}, quietLogger())
	svc := NewService(Deps{
		Carts:    carts,
		Store:    store,
		Shipping: shipping.NewCatalog(),
		Coupons:  coupon.NewStatic(map[string]float64{"SAVE10": 10}),
		Orders:   creator,
		Logger:   quietLogger(),
	})
	return svc, carts, store
}

func validCustomer() models.Customer {
	return models.Customer{
		Name:    "Amina Benali",
		Address: "12 rue Didouche Mourad",
		City:    "Alger",
		Phone:   "0550123456",
		Email:   "amina@example.dz",
	}
}

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.Customer)
		field  string
	}{
		{"blank name", func(c *models.Customer) { c.Name = "   " }, "name"},
		{"missing address", func(c *models.Customer) { c.Address = "" }, "address"},
		{"missing city", func(c *models.Customer) { c.City = "" }, "city"},
		{"missing phone", func(c *models.Customer) { c.Phone = "" }, "phone"},
		{"bad email", func(c *models.Customer) { c.Email = "not-an-email" }, "email"},
		{"missing email", func(c *models.Customer) { c.Email = "" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			tt.modify(&c)

			err := ValidateCustomer(c)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, verr.Fields)
			}
			if len(verr.Fields) != 1 {
				t.Errorf("expected a single field error, got %v", verr.Fields)
			}
		})
	}

	if err := ValidateCustomer(validCustomer()); err != nil {
		t.Errorf("valid customer rejected: %v", err)
	}
}

func TestBuildOrderTotals(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: "p1", Name: "Robe", Price: 1299.99, Quantity: 2, Size: "M"},
		{ProductID: "p2", Name: "Foulard", Price: 450.5, Quantity: 1, Color: "Rouge"},
	}
	opt, _ := shipping.NewCatalog().Lookup(shipping.Express)

	req := BuildOrder(lines, validCustomer(), opt, 305.05, "", "SAVE10")

	if len(req.Items) != 2 || req.Items[0].Size != "M" || req.Items[1].Color != "Rouge" {
		t.Fatalf("unexpected items: %+v", req.Items)
	}
	p := req.Payment
	if p.Subtotal != 3050.48 {
		t.Errorf("expected subtotal 3050.48, got %v", p.Subtotal)
	}
	if !money.Equal(p.Total, p.Subtotal+req.Shipping.Cost-p.Discount) {
		t.Errorf("total %v != %v + %v - %v", p.Total, p.Subtotal, req.Shipping.Cost, p.Discount)
	}
	if p.Total != 3745.43 {
		t.Errorf("expected total 3745.43, got %v", p.Total)
	}
	if p.Method != models.PaymentCashOnDelivery {
		t.Errorf("expected cod by default, got %q", p.Method)
	}
	if req.Shipping.ID != shipping.Express || req.Shipping.Method != "Livraison express" || req.Shipping.EstimatedDelivery == "" {
		t.Errorf("unexpected shipping: %+v", req.Shipping)
	}
}

func TestBuildOrderNeverNegative(t *testing.T) {
	lines := []models.CartLine{{ProductID: "p1", Price: 100, Quantity: 1}}
	opt, _ := shipping.NewCatalog().Lookup(shipping.Free)

	req := BuildOrder(lines, validCustomer(), opt, 500, models.PaymentCard, "")
	if req.Payment.Discount != 100 || req.Payment.Total != 0 {
		t.Errorf("expected discount capped at 100 and total 0, got %+v", req.Payment)
	}
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{code: "TRK1"}
	svc, carts, _ := newTestService(creator)
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Name: "Robe", Price: 500, Quantity: 2})

	res, err := svc.Submit(ctx, "s1", "", Request{Customer: validCustomer(), ShippingMethod: shipping.Standard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TrackingCode != "TRK1" {
		t.Errorf("expected TRK1, got %q", res.TrackingCode)
	}
	if len(creator.calls) != 1 || creator.calls[0].Payment.Total != 1500 {
		t.Fatalf("expected one call with total 1500, got %+v", creator.calls)
	}
	if creator.keys[0] == "" {
		t.Error("expected an idempotency key")
	}

	if got := carts.Get(ctx, "s1"); len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %+v", got)
	}
	last, err := svc.LastOrder(ctx, "s1")
	if err != nil || last == nil || last.TrackingCode != "TRK1" {
		t.Fatalf("expected last order TRK1, got %+v (%v)", last, err)
	}
	if last.Payment.Total != 1500 || last.Customer.Email != "amina@example.dz" {
		t.Errorf("unexpected last order: %+v", last)
	}
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{err: errors.New("dial tcp: connection refused")}
	svc, carts, _ := newTestService(creator)
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})

	_, err := svc.Submit(ctx, "s1", "", Request{Customer: validCustomer(), ShippingMethod: shipping.Standard})
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SubmitError, got %v", err)
	}
	if serr.Message != MessageSubmitFailed || serr.Status != 502 {
		t.Errorf("unexpected submit error: %+v", serr)
	}

	got := carts.Get(ctx, "s1")
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("cart should be unchanged, got %+v", got)
	}
	if last, _ := svc.LastOrder(ctx, "s1"); last != nil {
		t.Errorf("no last order expected, got %+v", last)
	}
}

func TestSubmitSurfacesPublicMessage(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newTestService(&fakeCreator{err: upstreamErr{}})
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})

	_, err := svc.Submit(ctx, "s1", "", Request{Customer: validCustomer()})
	var serr *SubmitError
	if !errors.As(err, &serr) || serr.Message != "Commande déjà en cours" || serr.Status != 409 {
		t.Fatalf("expected upstream message, got %v", err)
	}
}

func TestSubmitValidationSkipsOrderCall(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{code: "TRK1"}
	svc, carts, _ := newTestService(creator)
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})

	customer := validCustomer()
	customer.Email = "not-an-email"
	_, err := svc.Submit(ctx, "s1", "", Request{Customer: customer})

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["email"] == "" {
		t.Fatalf("expected email error, got %v", err)
	}
	if len(creator.calls) != 0 {
		t.Error("order must not be created when the form is invalid")
	}
}

func TestSubmitRejectsEmptyCartAndUnknownShipping(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newTestService(&fakeCreator{code: "TRK1"})

	if _, err := svc.Submit(ctx, "s1", "", Request{Customer: validCustomer()}); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}

	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})
	_, err := svc.Submit(ctx, "s1", "", Request{Customer: validCustomer(), ShippingMethod: "drone"})
	if !errors.Is(err, shipping.ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

func TestSubmitCoupon(t *testing.T) {
	tests := []struct {
		code       string
		discount   float64
		valid      bool
		couponCode string
	}{
		{"save10", 100, true, "SAVE10"},
		{"INVALID", 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ctx := context.Background()
			creator := &fakeCreator{code: "TRK1"}
			svc, carts, _ := newTestService(creator)
			carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 1000, Quantity: 1})

			res, err := svc.Submit(ctx, "s1", "", Request{
				Customer:       validCustomer(),
				ShippingMethod: shipping.Free,
				CouponCode:     tt.code,
			})
			if err != nil {
				t.Fatalf("coupon must never block checkout: %v", err)
			}
			if res.Coupon == nil || res.Coupon.Valid != tt.valid {
				t.Fatalf("unexpected coupon result: %+v", res.Coupon)
			}
			if !tt.valid && res.Coupon.ErrorMessage != coupon.MessageInvalid {
				t.Errorf("expected invalid message, got %q", res.Coupon.ErrorMessage)
			}
			sent := creator.calls[0]
			if sent.Payment.Discount != tt.discount || sent.CouponCode != tt.couponCode {
				t.Errorf("unexpected payment %+v / coupon %q", sent.Payment, sent.CouponCode)
			}
		})
	}
}

func TestSubmitRetryReusesIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{err: errors.New("timeout")}
	svc, carts, _ := newTestService(creator)
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})
	req := Request{Customer: validCustomer(), ShippingMethod: shipping.Standard}

	_, _ = svc.Submit(ctx, "s1", "", req)
	creator.err, creator.code = nil, "TRK1"
	if _, err := svc.Submit(ctx, "s1", "", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creator.keys[0] != creator.keys[1] {
		t.Errorf("retry must reuse the key: %q vs %q", creator.keys[0], creator.keys[1])
	}

	// après un succès, une nouvelle commande identique obtient une nouvelle clé
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})
	if _, err := svc.Submit(ctx, "s1", "", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creator.keys[2] == creator.keys[1] {
		t.Error("expected a fresh key after a successful order")
	}
}

func TestSubmitClientKeyWins(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{code: "TRK1"}
	svc, carts, _ := newTestService(creator)
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})

	if _, err := svc.Submit(ctx, "s1", "client-key", Request{Customer: validCustomer()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creator.keys[0] != "client-key" {
		t.Errorf("expected client key, got %q", creator.keys[0])
	}
}

func TestSubmitCardPayment(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newTestService(&fakeCreator{code: "TRK1"})
	payments := &fakePayments{}
	svc.payments = payments
	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 2})

	res, err := svc.Submit(ctx, "s1", "", Request{
		Customer:       validCustomer(),
		ShippingMethod: shipping.Standard,
		PaymentMethod:  "CARD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ClientSecret != "pi_secret" || payments.amount != 1500 {
		t.Errorf("unexpected payment: secret=%q amount=%v", res.ClientSecret, payments.amount)
	}

	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})
	payments.err = errors.New("stripe down")
	res, err = svc.Submit(ctx, "s1", "", Request{Customer: validCustomer(), PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("payment failure must not fail the order: %v", err)
	}
	if res.PaymentError == "" || res.ClientSecret != "" {
		t.Errorf("expected payment error, got %+v", res)
	}

	carts.AddItem(ctx, "s1", models.CartLine{ProductID: "p1", Price: 500, Quantity: 1})
	_, err = svc.Submit(ctx, "s1", "", Request{Customer: validCustomer(), PaymentMethod: "bitcoin"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["paymentMethod"] == "" {
		t.Errorf("expected paymentMethod error, got %v", err)
	}
}
