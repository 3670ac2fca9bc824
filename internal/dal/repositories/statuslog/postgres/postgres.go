package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/feastly/order-svc/internal/service/models/statuslog"
)

// StatusLogRepository implements the status transition audit trail for
// PostgreSQL.
type StatusLogRepository struct {
	conn sqlx.ExtContext
}

// NewStatusLogRepository creates a new status log repository.
func NewStatusLogRepository(conn sqlx.ExtContext) *StatusLogRepository {
	return &StatusLogRepository{
		conn: conn,
	}
}

// Insert appends a transition entry.
func (r *StatusLogRepository) Insert(ctx context.Context, entry statuslog.Entry) error {
	query, args, err := sq.Insert("order_status_log").
		Columns(
			"order_id",
			"from_status",
			"to_status",
			"payment_status",
			"source",
			"created_at",
		).
		Values(
			entry.OrderID,
			entry.FromStatus,
			entry.ToStatus,
			entry.PaymentStatus,
			entry.Source,
			entry.CreatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert status log entry: %w", err)
	}

	return nil
}
