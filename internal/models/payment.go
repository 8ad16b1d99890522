package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents the payment record for an order (1:1)
type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Date          time.Time       `json:"date"`
}

// PaymentMethod constants
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodWallet = "wallet"
)

// PaymentStatus constants
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// UpdatePaymentStatusRequest represents a payment status change
type UpdatePaymentStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=unpaid paid failed refunded"`
	TransactionID string `json:"transaction_id"`
}
