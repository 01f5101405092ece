package models

import "time"

// OrderEvent is the payload published to Kafka whenever an order changes
// status on either axis. Publishing is best-effort and never blocks the
// request that triggered it.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	InvoiceID     string    `json:"invoice_id"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	Timestamp     time.Time `json:"timestamp"`
}

const (
	EventOrderCreated      = "order.created"
	EventPaymentReconciled = "order.payment_reconciled"
	EventStatusChanged     = "order.status_changed"
)
