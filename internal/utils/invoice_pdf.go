package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"maeva_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
	"github.com/sirupsen/logrus"
)

// TrackingQR génère le QR code PNG pointant vers la page de suivi.
func TrackingQR(trackURL string) ([]byte, error) {
	return qrcode.Encode(trackURL, qrcode.Medium, 256)
}

// QRDataURI encode un PNG en data URI prêt à mettre dans <img src="...">.
func QRDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// InvoiceRenderer produit la facture PDF d'une commande.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, o models.Order) ([]byte, error)
}

// ChromeInvoices imprime la facture HTML en PDF via un Chrome headless.
type ChromeInvoices struct {
	shop        string
	frontendURL string
	timeout     time.Duration
	logger      *logrus.Logger
}

func NewChromeInvoices(shop, frontendURL string, logger *logrus.Logger) *ChromeInvoices {
	return &ChromeInvoices{
		shop:        shop,
		frontendURL: frontendURL,
		timeout:     30 * time.Second,
		logger:      logger,
	}
}

func (r *ChromeInvoices) RenderInvoice(ctx context.Context, o models.Order) ([]byte, error) {
	qrURI := ""
	if png, err := TrackingQR(TrackingURL(r.frontendURL, o.TrackingCode)); err == nil {
		qrURI = QRDataURI(png)
	}

	html, err := RenderInvoiceHTML(r.shop, o, qrURI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var pdfBuf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("rendu PDF de la facture %s: %w", o.TrackingCode, err)
	}

	r.logger.WithField("tracking_code", o.TrackingCode).Info("🧾 Facture PDF générée")
	return pdfBuf, nil
}
