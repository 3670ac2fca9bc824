package istatuslogrepo

import (
	"context"

	"github.com/feastly/order-svc/internal/service/models/statuslog"
)

// IStatusLogRepository defines the append-only audit trail of order
// status transitions.
type IStatusLogRepository interface {
	Insert(ctx context.Context, entry statuslog.Entry) error
}
