package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"maeva_back_end/internal/config"
	"maeva_back_end/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const qrContentID = "suivi-qr.png"

// Sender est la partie du client SMTP utilisée par Mailer.
type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

// Mailer envoie les e-mails transactionnels des commandes.
type Mailer struct {
	sender      Sender
	from        string
	shop        string
	frontendURL string
	invoices    InvoiceRenderer
	logger      *logrus.Logger
}

// NewMailer crée le client SMTP (STARTTLS obligatoire, auth LOGIN).
func NewMailer(cfg config.SMTPConfig, shop, frontendURL string, invoices InvoiceRenderer, logger *logrus.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP_HOST non configuré")
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("client SMTP: %w", err)
	}

	return NewMailerWithSender(client, cfg.From, shop, frontendURL, invoices, logger), nil
}

// NewMailerWithSender permet d'injecter un autre transport (tests).
func NewMailerWithSender(sender Sender, from, shop, frontendURL string, invoices InvoiceRenderer, logger *logrus.Logger) *Mailer {
	return &Mailer{
		sender:      sender,
		from:        from,
		shop:        shop,
		frontendURL: frontendURL,
		invoices:    invoices,
		logger:      logger,
	}
}

func (m *Mailer) newMsg(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

// OrderCreated envoie la confirmation avec QR de suivi et facture PDF quand elles sont disponibles.
func (m *Mailer) OrderCreated(ctx context.Context, o models.Order) error {
	qr, err := TrackingQR(TrackingURL(m.frontendURL, o.TrackingCode))
	if err != nil {
		m.logger.WithError(err).Warn("⚠️ QR de suivi non généré")
		qr = nil
	}

	cid := ""
	if qr != nil {
		cid = qrContentID
	}
	html, err := RenderOrderConfirmation(m.shop, m.frontendURL, o, cid)
	if err != nil {
		return err
	}

	msg, err := m.newMsg(o.Customer.Email, fmt.Sprintf("✅ Commande %s confirmée - %s", o.TrackingCode, m.shop), html)
	if err != nil {
		return err
	}
	if qr != nil {
		msg.EmbedReader(qrContentID, bytes.NewReader(qr))
	}

	if m.invoices != nil {
		pdf, err := m.invoices.RenderInvoice(ctx, o)
		if err != nil {
			m.logger.WithError(err).WithField("tracking_code", o.TrackingCode).Warn("⚠️ Facture PDF indisponible, envoi sans pièce jointe")
		} else if len(pdf) > 0 {
			msg.AttachReader(fmt.Sprintf("facture_%s.pdf", o.TrackingCode), bytes.NewReader(pdf))
		}
	}

	m.logger.WithField("to", o.Customer.Email).Info("📤 Envoi de l'e-mail de confirmation")
	return m.sender.DialAndSend(msg)
}

// StatusChanged notifie le client du nouveau statut de sa commande.
func (m *Mailer) StatusChanged(_ context.Context, o models.Order) error {
	html, err := RenderStatusEmail(m.shop, m.frontendURL, o)
	if err != nil {
		return err
	}

	msg, err := m.newMsg(o.Customer.Email, statusEmailSubject(m.shop, o.Status), html)
	if err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{"to": o.Customer.Email, "status": o.Status}).Info("📧 Envoi de l'e-mail de statut")
	return m.sender.DialAndSend(msg)
}
