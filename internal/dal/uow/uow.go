package uow

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/feastly/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/feastly/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/feastly/order-svc/internal/dal/interfaces/istatuslogrepo"
	"github.com/feastly/order-svc/internal/dal/postgres"
	orderrepo "github.com/feastly/order-svc/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/feastly/order-svc/internal/dal/repositories/outbox/postgres"
	statuslogrepo "github.com/feastly/order-svc/internal/dal/repositories/statuslog/postgres"
)

// unitOfWork binds the order, outbox and status log repositories to a
// single transaction so a state change and the events describing it
// commit atomically.
type unitOfWork struct {
	db            *sqlx.DB
	tx            *sqlx.Tx
	orderRepo     iorderrepo.IOrderRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
	statusLogRepo istatuslogrepo.IStatusLogRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	db := client.DB()

	return &unitOfWork{
		db:            db,
		orderRepo:     orderrepo.NewPostgresOrderRepository(db),
		outboxRepo:    outboxrepo.NewOutboxRepository(db),
		statusLogRepo: statuslogrepo.NewStatusLogRepository(db),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) StatusLogRepository() istatuslogrepo.IStatusLogRepository {
	return u.statusLogRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)
	u.statusLogRepo = statuslogrepo.NewStatusLogRepository(tx)

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback()
}
