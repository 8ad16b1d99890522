package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/ashendes/bookstore/internal/models"
	"github.com/ashendes/bookstore/internal/patterns"
)

// Receipts posts order receipts to a configured webhook. The webhook is an
// optional external collaborator, so calls go through a circuit breaker
// and a bulkhead and failures never propagate into checkout.
type Receipts struct {
	client   *resty.Client
	circuit  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
	url      string
}

// NewReceipts creates a receipt notifier posting to url
func NewReceipts(url string) *Receipts {
	return &Receipts{
		client: resty.New().
			SetTimeout(patterns.DefaultTimeout).
			SetRetryCount(0), // the circuit breaker decides when to stop trying
		circuit:  patterns.NewCircuitBreaker("ReceiptWebhook", "bookstore-service"),
		bulkhead: patterns.NewBulkhead(10, "receipts", "bookstore-service"),
		url:      url,
	}
}

type receipt struct {
	OrderID     string             `json:"order_id"`
	CustomerID  string             `json:"customer_id"`
	Items       []models.OrderItem `json:"items"`
	TotalAmount string             `json:"total_amount"`
	Status      string             `json:"status"`
}

// OrderPlaced publishes a receipt for a committed order
func (r *Receipts) OrderPlaced(ctx context.Context, o *models.Order) error {
	body := receipt{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Items:       o.Items,
		TotalAmount: o.TotalAmount.String(),
		Status:      o.Status,
	}

	err := r.bulkhead.Execute(func() error {
		_, cbErr := r.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := r.client.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(body).
				Post(r.url)

			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
				return nil, fmt.Errorf("receipt webhook returned status %d", resp.StatusCode())
			}
			return nil, nil
		})
		return patterns.FormatError("ReceiptWebhook", cbErr)
	})
	if err != nil {
		return err
	}

	log.WithField("order_id", o.ID).Debug("Receipt published")
	return nil
}
