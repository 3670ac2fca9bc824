package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v78"

	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/service/models/currency"
	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/models/statuslog"
)

var (
	// ErrValidation marks a request rejected before the processor was
	// called.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSignature marks a webhook whose signature did not
	// verify. Nothing from such a payload is trusted or applied.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// processorGateway is the payment-processor surface the service uses.
type processorGateway interface {
	CreateIntent(ctx context.Context, amount int64, cur currency.Currency, orderID string) (*stripedal.Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// orderWriter is the subset of the order service the reconciliation
// path writes through.
type orderWriter interface {
	MarkPaid(ctx context.Context, orderID, paymentIntentID, source string) (*order.Order, error)
	MarkPaymentFailed(ctx context.Context, orderID, source string) (*order.Order, error)
}

// PaymentService creates payment intents and reconciles processor
// webhook events into order state. The webhook is the authoritative
// source of truth for payment outcome, independent of whether the
// client's browser session survived checkout.
type PaymentService struct {
	gateway processorGateway
	orders  orderWriter
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.gateway == nil {
		panic("paymentsvc requires a processor gateway")
	}
	if s.orders == nil {
		panic("paymentsvc requires an order writer")
	}

	return s
}

// WithGateway sets the payment-processor gateway.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gateway processorGateway) option {
	return func(s *PaymentService) {
		s.gateway = gateway
	}
}

// WithOrderWriter sets the order writer used by webhook reconciliation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderWriter(orders orderWriter) option {
	return func(s *PaymentService) {
		s.orders = orders
	}
}

// CreateIntent asks the processor for a payment intent over the given
// minor-unit amount, tagged with the order identifier for later webhook
// correlation. Nothing is persisted locally; a processor error is
// surfaced verbatim and the caller decides whether to retry the
// checkout step.
func (s *PaymentService) CreateIntent(
	ctx context.Context,
	amount int64,
	orderID string,
	cur currency.Currency,
) (*stripedal.Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer in minor units", ErrValidation)
	}
	if orderID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}

	return s.gateway.CreateIntent(ctx, amount, cur, orderID)
}

// HandleWebhook verifies and applies one processor event. Signature
// failure is terminal; a store failure after verification is returned
// so the processor's redelivery mechanism retries the event.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.applyPaymentSucceeded(ctx, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.applyPaymentFailed(ctx, event)
	default:
		slog.Debug("Ignoring webhook event", "type", event.Type)

		return nil
	}
}

func (s *PaymentService) applyPaymentSucceeded(ctx context.Context, event stripe.Event) error {
	intent, orderID, err := intentFromEvent(event)
	if err != nil {
		return err
	}
	if orderID == "" {
		slog.Warn("Payment succeeded event without order metadata", "intent_id", intent.ID)

		return nil
	}

	if _, err := s.orders.MarkPaid(ctx, orderID, intent.ID, statuslog.SourceWebhook); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			slog.Warn("Payment succeeded for unknown order", "order_id", orderID, "intent_id", intent.ID)

			return nil
		}

		return err
	}

	slog.Info("Order reconciled as paid", "order_id", orderID, "intent_id", intent.ID)

	return nil
}

func (s *PaymentService) applyPaymentFailed(ctx context.Context, event stripe.Event) error {
	intent, orderID, err := intentFromEvent(event)
	if err != nil {
		return err
	}
	if orderID == "" {
		slog.Warn("Payment failed event without order metadata", "intent_id", intent.ID)

		return nil
	}

	if _, err := s.orders.MarkPaymentFailed(ctx, orderID, statuslog.SourceWebhook); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			slog.Warn("Payment failed for unknown order", "order_id", orderID, "intent_id", intent.ID)

			return nil
		}

		return err
	}

	slog.Info("Order payment marked failed", "order_id", orderID, "intent_id", intent.ID)

	return nil
}

func intentFromEvent(event stripe.Event) (*stripe.PaymentIntent, string, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal payment intent from event: %w", err)
	}

	return &intent, intent.Metadata[stripedal.MetadataOrderIDKey], nil
}
