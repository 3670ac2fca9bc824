package iorderrepo

import (
	"context"

	"github.com/feastly/order-svc/internal/service/models/order"
)

// IOrderRepository defines the persistence operations for orders.
type IOrderRepository interface {
	// Insert persists a new order. The public order_id carries a
	// uniqueness constraint; a duplicate fails the insert.
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetByOrderID fetches an order by its public identifier.
	// Returns ErrOrderNotFound when no order matches.
	GetByOrderID(ctx context.Context, orderID string) (*order.Order, error)

	// Query retrieves orders by filter, sorted newest-first.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// Update applies a partial field-level update to status and payment
	// fields. A paid payment status is terminal: the update is a no-op
	// when it would regress payment_status off "paid".
	Update(ctx context.Context, orderID string, upd order.UpdateOrderModel) (*order.Order, error)

	// MarkPaid advances the order to paymentStatus=paid,
	// status=confirmed and records the payment-intent identifier.
	// Guarded on payment_status != 'paid', so replays converge without
	// duplicate side effects. The returned bool reports whether this
	// call performed the transition.
	MarkPaid(ctx context.Context, orderID, paymentIntentID string) (*order.Order, bool, error)

	// MarkPaymentFailed sets paymentStatus=failed, leaving the order
	// status untouched for operator review. Guarded the same way as
	// MarkPaid: a paid order is never regressed.
	MarkPaymentFailed(ctx context.Context, orderID string) (*order.Order, error)
}
