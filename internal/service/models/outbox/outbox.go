package outbox

import (
	"time"
)

// Event routing keys for order lifecycle messages.
const (
	RoutingKeyOrderCreated = "order.created"
	RoutingKeyOrderPaid    = "order.paid"
)

// Message represents an order event awaiting publication to RabbitMQ.
// Messages are inserted in the same transaction as the state change
// they describe and relayed by the outbox worker.
type Message struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
