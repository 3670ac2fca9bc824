package statuslog

import "time"

// Entry records one status or payment-status transition of an order.
// Entries form an append-only audit trail; they are written in the same
// transaction as the transition itself.
type Entry struct {
	ID            int64     `json:"id"`
	OrderID       string    `json:"orderId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sources of a transition.
const (
	SourceCheckout = "checkout"
	SourceClient   = "client"
	SourceWebhook  = "webhook"
	SourceAdmin    = "admin"
)
