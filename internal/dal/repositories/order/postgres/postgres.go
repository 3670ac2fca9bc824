package postgresrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/feastly/order-svc/internal/service/models/order"
)

const uniqueViolationCode = "23505"

var orderColumns = []string{
	"id",
	"order_id",
	"user_id",
	"items",
	"delivery_info",
	"order_summary",
	"payment_method",
	"payment_status",
	"status",
	"payment_intent_id",
	"created_at",
	"updated_at",
	"estimated_delivery_time",
	"delivered_at",
}

// OrderDal represents the order data access layer model. Line items,
// delivery info and the order summary are stored as jsonb snapshots
// written once at creation time.
type OrderDal struct {
	ID                    int64          `db:"id"`
	OrderID               string         `db:"order_id"`
	UserID                sql.NullString `db:"user_id"`
	Items                 []byte         `db:"items"`
	DeliveryInfo          []byte         `db:"delivery_info"`
	OrderSummary          []byte         `db:"order_summary"`
	PaymentMethod         string         `db:"payment_method"`
	PaymentStatus         string         `db:"payment_status"`
	Status                string         `db:"status"`
	PaymentIntentID       sql.NullString `db:"payment_intent_id"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	EstimatedDeliveryTime time.Time      `db:"estimated_delivery_time"`
	DeliveredAt           *time.Time     `db:"delivered_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	var items []order.LineItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	var deliveryInfo order.DeliveryInfo
	if err := json.Unmarshal(o.DeliveryInfo, &deliveryInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery info: %w", err)
	}

	var summary order.Summary
	if err := json.Unmarshal(o.OrderSummary, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order summary: %w", err)
	}

	return &order.Order{
		ID:                    o.ID,
		OrderID:               o.OrderID,
		UserID:                o.UserID.String,
		Items:                 items,
		DeliveryInfo:          deliveryInfo,
		Summary:               summary,
		PaymentMethod:         order.PaymentMethod(o.PaymentMethod),
		PaymentStatus:         order.PaymentStatus(o.PaymentStatus),
		Status:                order.Status(o.Status),
		PaymentIntentID:       o.PaymentIntentID.String,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		DeliveredAt:           o.DeliveredAt,
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) (*OrderDal, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	deliveryInfo, err := json.Marshal(o.DeliveryInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delivery info: %w", err)
	}

	summary, err := json.Marshal(o.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order summary: %w", err)
	}

	return &OrderDal{
		ID:                    o.ID,
		OrderID:               o.OrderID,
		UserID:                sql.NullString{String: o.UserID, Valid: o.UserID != ""},
		Items:                 items,
		DeliveryInfo:          deliveryInfo,
		OrderSummary:          summary,
		PaymentMethod:         string(o.PaymentMethod),
		PaymentStatus:         string(o.PaymentStatus),
		Status:                string(o.Status),
		PaymentIntentID:       sql.NullString{String: o.PaymentIntentID, Valid: o.PaymentIntentID != ""},
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		DeliveredAt:           o.DeliveredAt,
	}, nil
}

type PostgresOrderRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresOrderRepository(conn sqlx.ExtContext) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a new order and returns it with the generated row id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal, err := OrderDalFromModel(&o)
	if err != nil {
		return order.Order{}, err
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"order_id",
			"user_id",
			"items",
			"delivery_info",
			"order_summary",
			"payment_method",
			"payment_status",
			"status",
			"payment_intent_id",
			"created_at",
			"updated_at",
			"estimated_delivery_time",
		).
		Values(
			dal.OrderID,
			dal.UserID,
			dal.Items,
			dal.DeliveryInfo,
			dal.OrderSummary,
			dal.PaymentMethod,
			dal.PaymentStatus,
			dal.Status,
			dal.PaymentIntentID,
			dal.CreatedAt,
			dal.UpdatedAt,
			dal.EstimatedDeliveryTime,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	row := r.conn.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&o.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return order.Order{}, order.ErrDuplicateOrderID
		}

		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetByOrderID fetches a single order by its public identifier.
func (r *PostgresOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	row := r.conn.QueryRowxContext(ctx, query, args...)

	return scanOrder(row)
}

// Query retrieves orders matching the filter, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.OrderIDs) > 0 {
		builder = builder.Where(sq.Expr("order_id = ANY(?)", pq.Array(filter.OrderIDs)))
	}
	if len(filter.UserIDs) > 0 {
		builder = builder.Where(sq.Expr("user_id = ANY(?)", pq.Array(filter.UserIDs)))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := rows.StructScan(&dal); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, err
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Update applies a partial field-level update. The guard clause keeps a
// terminal paid payment status from being regressed by a late writer;
// when it blocks the write, the current record is returned unchanged.
func (r *PostgresOrderRepository) Update(
	ctx context.Context,
	orderID string,
	upd order.UpdateOrderModel,
) (*order.Order, error) {
	if upd.Empty() {
		return r.GetByOrderID(ctx, orderID)
	}

	now := time.Now()
	builder := sq.Update("orders").
		Set("updated_at", now).
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar)

	if upd.Status != nil {
		builder = builder.Set("status", string(*upd.Status))
		if *upd.Status == order.StatusDelivered {
			builder = builder.Set("delivered_at", now)
		}
	}
	if upd.PaymentStatus != nil {
		builder = builder.Set("payment_status", string(*upd.PaymentStatus))
		if *upd.PaymentStatus != order.PaymentStatusPaid {
			builder = builder.Where(sq.NotEq{"payment_status": string(order.PaymentStatusPaid)})
		}
	}
	if upd.PaymentIntentID != nil {
		builder = builder.Set("payment_intent_id", *upd.PaymentIntentID)
	}

	query, args, err := builder.
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanOrder(r.conn.QueryRowxContext(ctx, query, args...))
	if errors.Is(err, order.ErrOrderNotFound) {
		// Either the order does not exist or the paid guard blocked the
		// write; disambiguate with a plain fetch.
		return r.GetByOrderID(ctx, orderID)
	}

	return updated, err
}

// MarkPaid advances the order to paid/confirmed. The update is a pure
// assignment guarded on payment_status != 'paid', so duplicate webhook
// deliveries and the client patch all converge on the same state.
func (r *PostgresOrderRepository) MarkPaid(
	ctx context.Context,
	orderID string,
	paymentIntentID string,
) (*order.Order, bool, error) {
	query, args, err := sq.Update("orders").
		Set("payment_status", string(order.PaymentStatusPaid)).
		Set("status", string(order.StatusConfirmed)).
		Set("payment_intent_id", paymentIntentID).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"payment_status": string(order.PaymentStatusPaid)}).
		Suffix("RETURNING " + joinColumns()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanOrder(r.conn.QueryRowxContext(ctx, query, args...))
	if errors.Is(err, order.ErrOrderNotFound) {
		existing, getErr := r.GetByOrderID(ctx, orderID)
		if getErr != nil {
			return nil, false, getErr
		}

		// Already paid; replay converges with no further side effects.
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return updated, true, nil
}

// MarkPaymentFailed sets payment_status=failed only. The order status is
// left untouched so an operator can decide whether to cancel or retry.
func (r *PostgresOrderRepository) MarkPaymentFailed(ctx context.Context, orderID string) (*order.Order, error) {
	query, args, err := sq.Update("orders").
		Set("payment_status", string(order.PaymentStatusFailed)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"payment_status": string(order.PaymentStatusPaid)}).
		Suffix("RETURNING " + joinColumns()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanOrder(r.conn.QueryRowxContext(ctx, query, args...))
	if errors.Is(err, order.ErrOrderNotFound) {
		return r.GetByOrderID(ctx, orderID)
	}

	return updated, err
}

func scanOrder(row *sqlx.Row) (*order.Order, error) {
	var dal OrderDal
	if err := row.StructScan(&dal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	return dal.ToModel()
}

func joinColumns() string {
	return strings.Join(orderColumns, ", ")
}
