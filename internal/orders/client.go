package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"maeva_back_end/internal/checkout"
	"maeva_back_end/internal/models"

	"github.com/sirupsen/logrus"
)

// Client appelle un service de commandes distant exposant POST /api/orders.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) CreateOrder(ctx context.Context, idempotencyKey string, req models.OrderRequest) (*models.OrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	c.logger.WithFields(logrus.Fields{
		"url":   httpReq.URL.String(),
		"items": len(req.Items),
	}).Debug("Envoi de la commande au service de commandes")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call orders service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out models.OrderResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := checkout.MessageSubmitFailed
		if decodeErr == nil && out.Error != "" {
			msg = out.Error
		}
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"error":  msg,
		}).Warn("⚠️ Le service de commandes a refusé la commande")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return &out, nil
}

// TrackResponse est la réponse de GET /api/orders/track/:code.
type TrackResponse struct {
	Order    *models.Order         `json:"order"`
	Timeline []models.TrackingStep `json:"timeline"`
}

func (c *Client) Track(ctx context.Context, trackingCode string) (*TrackResponse, error) {
	endpoint := c.baseURL + "/api/orders/track/" + url.PathEscape(NormalizeTrackingCode(trackingCode))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call orders service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "Suivi de commande indisponible"}
	}

	var out TrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
