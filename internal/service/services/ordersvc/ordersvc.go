package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/feastly/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/feastly/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/feastly/order-svc/internal/dal/interfaces/istatuslogrepo"
	"github.com/feastly/order-svc/internal/dal/postgres"
	"github.com/feastly/order-svc/internal/dal/uow"
	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/models/outbox"
	"github.com/feastly/order-svc/internal/service/models/statuslog"
)

// orderIDPrefix is the human-readable prefix of public order
// identifiers.
const orderIDPrefix = "ORD-"

const (
	defaultDeliveryBufferMinutes = 45
	defaultOutboxMaxRetries      = 10
)

// ErrValidation marks a request rejected before any state was mutated.
var ErrValidation = errors.New("validation failed")

// unitOfWork binds the repositories the service writes through to one
// transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
	StatusLogRepository() istatuslogrepo.IStatusLogRepository
}

// OrderService manages the order lifecycle: creation, retrieval and
// guarded status transitions.
type OrderService struct {
	pgClient       *postgres.Client
	uowFactory     func() unitOfWork
	deliveryBuffer time.Duration
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	bufferMinutes := viper.GetInt("orders.delivery_buffer_minutes")
	if bufferMinutes == 0 {
		bufferMinutes = defaultDeliveryBufferMinutes
	}

	s := &OrderService{
		deliveryBuffer: time.Duration(bufferMinutes) * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("ordersvc requires a postgres client or a unit-of-work factory")
		}
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides transaction construction, used by
// tests to run against in-memory repositories.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// CreateOrderModel is the cart-derived payload accepted by CreateOrder.
// The summary is a snapshot computed at checkout; it is persisted as-is
// and never recomputed from live catalog prices.
type CreateOrderModel struct {
	Items         []order.LineItem
	DeliveryInfo  order.DeliveryInfo
	Summary       order.Summary
	PaymentMethod order.PaymentMethod
	UserID        string
}

// CreateOrder validates the payload, assigns the public identifier and
// the delivery estimate, applies the initial-status policy and persists
// the record together with an order.created outbox event.
func (s *OrderService) CreateOrder(ctx context.Context, model CreateOrderModel) (*order.Order, error) {
	if err := validateCreateOrder(model); err != nil {
		return nil, err
	}

	now := time.Now()
	o := order.Order{
		OrderID:               NewOrderID(),
		UserID:                model.UserID,
		Items:                 model.Items,
		DeliveryInfo:          model.DeliveryInfo,
		Summary:               model.Summary,
		PaymentMethod:         model.PaymentMethod,
		PaymentStatus:         order.PaymentStatusPending,
		Status:                initialStatus(model.PaymentMethod),
		CreatedAt:             now,
		UpdatedAt:             now,
		EstimatedDeliveryTime: now.Add(s.deliveryBuffer),
	}

	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	if err := work.StatusLogRepository().Insert(ctx, statuslog.Entry{
		OrderID:       inserted.OrderID,
		FromStatus:    "",
		ToStatus:      string(inserted.Status),
		PaymentStatus: string(inserted.PaymentStatus),
		Source:        statuslog.SourceCheckout,
		CreatedAt:     now,
	}); err != nil {
		return nil, err
	}

	if err := s.enqueueEvent(ctx, work, outbox.RoutingKeyOrderCreated, &inserted); err != nil {
		return nil, err
	}

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return &inserted, nil
}

// GetOrder fetches an order by its public identifier.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	return s.uowFactory().OrderRepository().GetByOrderID(ctx, orderID)
}

// ListOrders retrieves orders matching the filter, newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	orders, err := s.uowFactory().OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []order.Order{}
	}

	return orders, nil
}

// PatchOrder applies a partial status/payment update on behalf of the
// given source, recording the transition in the status log. The store's
// paid guard keeps a late patch from regressing a paid order.
func (s *OrderService) PatchOrder(
	ctx context.Context,
	orderID string,
	upd order.UpdateOrderModel,
	source string,
) (*order.Order, error) {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	before, err := work.OrderRepository().GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := work.OrderRepository().Update(ctx, orderID, upd)
	if err != nil {
		return nil, err
	}

	if updated.Status != before.Status || updated.PaymentStatus != before.PaymentStatus {
		if err := work.StatusLogRepository().Insert(ctx, statuslog.Entry{
			OrderID:       orderID,
			FromStatus:    string(before.Status),
			ToStatus:      string(updated.Status),
			PaymentStatus: string(updated.PaymentStatus),
			Source:        source,
			CreatedAt:     time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return updated, nil
}

// MarkPaid advances an order to paid/confirmed on behalf of the given
// source. The operation is idempotent: only the call that performs the
// transition records a log entry and enqueues the order.paid event, so
// replays and dual writers converge without duplicate side effects.
func (s *OrderService) MarkPaid(
	ctx context.Context,
	orderID string,
	paymentIntentID string,
	source string,
) (*order.Order, error) {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	before, err := work.OrderRepository().GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, transitioned, err := work.OrderRepository().MarkPaid(ctx, orderID, paymentIntentID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		if err := work.StatusLogRepository().Insert(ctx, statuslog.Entry{
			OrderID:       orderID,
			FromStatus:    string(before.Status),
			ToStatus:      string(updated.Status),
			PaymentStatus: string(updated.PaymentStatus),
			Source:        source,
			CreatedAt:     time.Now(),
		}); err != nil {
			return nil, err
		}

		if err := s.enqueueEvent(ctx, work, outbox.RoutingKeyOrderPaid, updated); err != nil {
			return nil, err
		}
	}

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return updated, nil
}

// MarkPaymentFailed records a failed payment, leaving the order status
// untouched for operator review.
func (s *OrderService) MarkPaymentFailed(
	ctx context.Context,
	orderID string,
	source string,
) (*order.Order, error) {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	updated, err := work.OrderRepository().MarkPaymentFailed(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if updated.PaymentStatus == order.PaymentStatusFailed {
		if err := work.StatusLogRepository().Insert(ctx, statuslog.Entry{
			OrderID:       orderID,
			FromStatus:    string(updated.Status),
			ToStatus:      string(updated.Status),
			PaymentStatus: string(updated.PaymentStatus),
			Source:        source,
			CreatedAt:     time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *OrderService) enqueueEvent(
	ctx context.Context,
	work unitOfWork,
	routingKey string,
	o *order.Order,
) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:    viper.GetString("rabbitmq.orders_queue"),
		ExchangeName: viper.GetString("rabbitmq.orders_exchange"),
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   defaultOutboxMaxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}

// NewOrderID generates a collision-resistant public order identifier
// with the human-readable prefix.
func NewOrderID() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))

	return orderIDPrefix + token[:12]
}

func initialStatus(method order.PaymentMethod) order.Status {
	// Cash is collected on delivery, so the order is confirmed right
	// away; card orders wait for an external payment confirmation.
	if method == order.PaymentMethodCash {
		return order.StatusConfirmed
	}

	return order.StatusPendingPayment
}

func validateCreateOrder(model CreateOrderModel) error {
	if _, err := order.ParsePaymentMethod(string(model.PaymentMethod)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(model.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range model.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q quantity must be positive", ErrValidation, item.ItemID)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q price must not be negative", ErrValidation, item.ItemID)
		}
	}
	if model.DeliveryInfo.Name == "" {
		return fmt.Errorf("%w: delivery name is required", ErrValidation)
	}
	if model.DeliveryInfo.Phone == "" {
		return fmt.Errorf("%w: delivery phone is required", ErrValidation)
	}
	if model.DeliveryInfo.Address == "" {
		return fmt.Errorf("%w: delivery address is required", ErrValidation)
	}

	return nil
}
