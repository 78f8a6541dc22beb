// Package notify posts committed-sale events to a configured webhook.
// Delivery is best effort: a failed post is logged and dropped, it never
// affects the committed sale.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SaleEvent is the payload posted for each committed sale.
type SaleEvent struct {
	TransactionID string `json:"transaction_id"`
	OwnerID       string `json:"owner_id"`
	TotalAmount   string `json:"total_amount"`
	LineCount     int    `json:"line_count"`
}

// Notifier delivers sale events over HTTP.
type Notifier struct {
	client     *resty.Client
	webhookURL string
	logger     *zap.Logger
}

// NewNotifier creates a Notifier posting to webhookURL. Returns nil when
// webhookURL is empty so callers can skip notification entirely.
func NewNotifier(webhookURL string, logger *zap.Logger) *Notifier {
	if webhookURL == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Notifier{client: client, webhookURL: webhookURL, logger: logger}
}

// SaleCommitted posts the event, logging on failure.
func (n *Notifier) SaleCommitted(ctx context.Context, event SaleEvent) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.webhookURL)

	if err != nil {
		n.logger.Warn("sale webhook delivery failed",
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Warn("sale webhook rejected",
			zap.String("transaction_id", event.TransactionID),
			zap.Int("status", resp.StatusCode()),
		)
	}
}
