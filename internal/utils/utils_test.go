package utils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"strings"
	"testing"
	"time"

	"maeva_back_end/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleOrder() models.Order {
	return models.Order{
		TrackingCode: "MAEVA-AB12CD34",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Karakou velours", Price: 1500, Quantity: 2, Size: "M"},
		},
		Customer: models.Customer{
			Name: "Amina", Address: "12 rue Didouche", City: "Alger",
			Phone: "0555000000", Email: "amina@example.com",
		},
		Shipping:  models.ShippingInfo{Method: "standard", Cost: 500, EstimatedDelivery: "3-5 jours"},
		Payment:   models.PaymentInfo{Method: models.PaymentCashOnDelivery, Subtotal: 3000, Discount: 300, ShippingCost: 500, Total: 3200},
		Status:    models.OrderPending,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !IsArgon2Hash(hash) {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("s3cret!", hash)
	if err != nil || !ok {
		t.Errorf("expected password to match (%v)", err)
	}
	ok, err = VerifyPassword("wrong", hash)
	if err != nil || ok {
		t.Errorf("expected mismatch (%v)", err)
	}
	if _, err := VerifyPassword("x", "$2a$10$bcrypt"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("expected an error for an empty password")
	}
}

func TestAdminJWT(t *testing.T) {
	token, err := GenerateAdminJWT("secret", "admin@maeva.dz", time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := ParseAdminJWT("secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Email != "admin@maeva.dz" || claims.Role != RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := ParseAdminJWT("other", token); err == nil {
		t.Error("expected signature error with another secret")
	}

	expired, _ := GenerateAdminJWT("secret", "admin@maeva.dz", -time.Minute)
	if _, err := ParseAdminJWT("secret", expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	if _, err := GenerateAdminJWT("", "admin@maeva.dz", time.Hour); err == nil {
		t.Error("expected an error without secret")
	}
}

func TestRenderTemplates(t *testing.T) {
	o := sampleOrder()

	html, err := RenderOrderConfirmation("MAEVA", "https://maeva.dz/", o, qrContentID)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, want := range []string{"MAEVA-AB12CD34", "Karakou velours", "3000.00 DA", "3200.00 DA", "https://maeva.dz/suivi/MAEVA-AB12CD34", "cid:" + qrContentID, "Paiement à la livraison"} {
		if !strings.Contains(html, want) {
			t.Errorf("confirmation HTML missing %q", want)
		}
	}

	o.Status = models.OrderShipped
	status, err := RenderStatusEmail("MAEVA", "https://maeva.dz", o)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(status, "Expédiée") || !strings.Contains(status, "expédiée et est en route") {
		t.Errorf("status HTML missing label or message: %s", status)
	}

	invoice, err := RenderInvoiceHTML("MAEVA", o, "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(invoice, "Facture MAEVA-AB12CD34") || !strings.Contains(invoice, "data:image/png;base64,AAAA") {
		t.Errorf("invoice HTML incomplete: %s", invoice)
	}
}

func TestTrackingQR(t *testing.T) {
	png, err := TrackingQR(TrackingURL("https://maeva.dz", "MAEVA-AB12CD34"))
	if err != nil {
		t.Fatalf("qr failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected a PNG image")
	}
	if !strings.HasPrefix(QRDataURI(png), "data:image/png;base64,") {
		t.Error("unexpected data URI prefix")
	}
}

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSend(messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

type fakeInvoices struct {
	pdf []byte
	err error
}

func (f fakeInvoices) RenderInvoice(context.Context, models.Order) ([]byte, error) {
	return f.pdf, f.err
}

func TestMailerOrderCreated(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, "noreply@maeva.dz", "MAEVA", "https://maeva.dz",
		fakeInvoices{pdf: []byte("%PDF-1.4")}, quietLogger())

	if err := m.OrderCreated(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	rcpts, err := msg.GetRecipients()
	if err != nil || len(rcpts) != 1 || strings.Trim(rcpts[0], "<>") != "amina@example.com" {
		t.Errorf("unexpected recipients: %v (%v)", rcpts, err)
	}
	if len(msg.GetAttachments()) != 1 {
		t.Errorf("expected the invoice attachment")
	}
	if len(msg.GetEmbeds()) != 1 {
		t.Errorf("expected the embedded QR code")
	}
}

func TestMailerSendsWithoutInvoice(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, "noreply@maeva.dz", "MAEVA", "https://maeva.dz",
		fakeInvoices{err: errors.New("chrome absent")}, quietLogger())

	if err := m.OrderCreated(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || len(sender.sent[0].GetAttachments()) != 0 {
		t.Error("expected the e-mail to be sent without attachment")
	}
}

func TestMailerStatusChanged(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	m := NewMailerWithSender(sender, "noreply@maeva.dz", "MAEVA", "https://maeva.dz", nil, quietLogger())

	o := sampleOrder()
	o.Status = models.OrderDelivered
	if err := m.StatusChanged(context.Background(), o); err == nil {
		t.Error("expected the transport error to be returned")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one attempt, got %d", len(sender.sent))
	}
	subject := sender.sent[0].GetGenHeader(mail.HeaderSubject)
	if len(subject) != 1 {
		t.Fatalf("unexpected subject: %v", subject)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	if err != nil || !strings.Contains(decoded, "livrée") {
		t.Errorf("unexpected subject: %q (%v)", decoded, err)
	}
}

func TestMailerRejectsInvalidRecipient(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailerWithSender(sender, "noreply@maeva.dz", "MAEVA", "https://maeva.dz", nil, quietLogger())

	o := sampleOrder()
	o.Customer.Email = "not an address"
	if err := m.StatusChanged(context.Background(), o); err == nil {
		t.Error("expected an address error")
	}
	if len(sender.sent) != 0 {
		t.Error("nothing should be sent")
	}
}
