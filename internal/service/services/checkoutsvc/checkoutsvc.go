package checkoutsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/service/models/cart"
	"github.com/feastly/order-svc/internal/service/models/currency"
	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/models/statuslog"
	"github.com/feastly/order-svc/internal/service/services/ordersvc"
)

const (
	defaultDeliveryFee = 5.0
	defaultCurrency    = currency.CurrencyUSD
)

var (
	// ErrValidation marks a checkout rejected before the order was
	// created; the client keeps its cart.
	ErrValidation = errors.New("validation failed")

	// ErrPaymentDeclined carries the processor's decline message. The
	// order stays pending_payment and the cart is preserved; a later
	// webhook may still reconcile the order if funds were captured
	// asynchronously.
	ErrPaymentDeclined = errors.New("payment declined")
)

// orderCreator is the subset of the order service checkout drives.
type orderCreator interface {
	CreateOrder(ctx context.Context, model ordersvc.CreateOrderModel) (*order.Order, error)
	MarkPaid(ctx context.Context, orderID, paymentIntentID, source string) (*order.Order, error)
}

// intentCreator obtains a client-usable payment secret for an order.
type intentCreator interface {
	CreateIntent(ctx context.Context, amount int64, orderID string, cur currency.Currency) (*stripedal.Intent, error)
}

// cardConfirmer submits card details against a payment intent.
type cardConfirmer interface {
	ConfirmIntent(ctx context.Context, intentID string, card stripedal.CardDetails, billing order.DeliveryInfo) error
}

// CheckoutService sequences the multi-step checkout across the order
// store and the payment processor, which share no transaction. The
// order record never stays ambiguous longer than necessary: cash orders
// complete immediately, card orders are left pending_payment until the
// client patch or the webhook advances them.
type CheckoutService struct {
	orders      orderCreator
	intents     intentCreator
	confirmer   cardConfirmer
	deliveryFee float64
	currency    currency.Currency
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	fee := defaultDeliveryFee
	if viper.IsSet("checkout.delivery_fee") {
		fee = viper.GetFloat64("checkout.delivery_fee")
	}

	cur := defaultCurrency
	if configured := viper.GetString("checkout.currency"); configured != "" {
		parsed, err := currency.ParseCurrency(configured)
		if err != nil {
			panic("invalid checkout.currency: " + configured)
		}
		cur = parsed
	}

	s := &CheckoutService{
		deliveryFee: fee,
		currency:    cur,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orders == nil {
		panic("checkoutsvc requires an order service")
	}
	if s.intents == nil {
		panic("checkoutsvc requires a payment intent service")
	}

	return s
}

// WithOrderService sets the order service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderService(orders orderCreator) option {
	return func(s *CheckoutService) {
		s.orders = orders
	}
}

// WithIntentService sets the payment intent service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIntentService(intents intentCreator) option {
	return func(s *CheckoutService) {
		s.intents = intents
	}
}

// WithCardConfirmer sets the processor confirmation client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCardConfirmer(confirmer cardConfirmer) option {
	return func(s *CheckoutService) {
		s.confirmer = confirmer
	}
}

// CheckoutModel is a checkout submission: the cart working set, the
// delivery contact and the chosen payment method.
type CheckoutModel struct {
	Items         []cart.Item
	DeliveryInfo  order.DeliveryInfo
	PaymentMethod order.PaymentMethod
	Card          *stripedal.CardDetails
	Discount      float64
	UserID        string
}

// CheckoutResult reports a completed checkout. ClearCart tells the
// client its local working set may be discarded; on any error the cart
// is preserved so the user can retry.
type CheckoutResult struct {
	Order     *order.Order
	OrderID   string
	ClearCart bool
}

// Checkout runs the checkout sequence. Failures before order creation
// mutate nothing. A card decline leaves the created order
// pending_payment/pending for webhook reconciliation. The post-payment
// paid patch is best-effort: its failure is logged, not surfaced,
// because the webhook is the authoritative fallback.
func (s *CheckoutService) Checkout(ctx context.Context, model CheckoutModel) (*CheckoutResult, error) {
	if err := s.validate(model); err != nil {
		return nil, err
	}

	summary := s.buildSummary(model)

	created, err := s.orders.CreateOrder(ctx, ordersvc.CreateOrderModel{
		Items:         lineItems(model.Items),
		DeliveryInfo:  model.DeliveryInfo,
		Summary:       summary,
		PaymentMethod: model.PaymentMethod,
		UserID:        model.UserID,
	})
	if err != nil {
		if errors.Is(err, ordersvc.ErrValidation) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}

		return nil, err
	}

	if model.PaymentMethod == order.PaymentMethodCash {
		// Paid on delivery; no payment step.
		return &CheckoutResult{
			Order:     created,
			OrderID:   created.OrderID,
			ClearCart: true,
		}, nil
	}

	intent, err := s.intents.CreateIntent(
		ctx,
		currency.ToMinorUnits(summary.Total),
		created.OrderID,
		s.currency,
	)
	if err != nil {
		return nil, err
	}

	if err := s.confirmer.ConfirmIntent(ctx, intent.ID, *model.Card, model.DeliveryInfo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}

	if _, err := s.orders.MarkPaid(ctx, created.OrderID, intent.ID, statuslog.SourceClient); err != nil {
		slog.Error("Best-effort paid patch failed, webhook will reconcile",
			"order_id", created.OrderID,
			"intent_id", intent.ID,
			"error", err,
		)
	}

	return &CheckoutResult{
		Order:     created,
		OrderID:   created.OrderID,
		ClearCart: true,
	}, nil
}

func (s *CheckoutService) validate(model CheckoutModel) error {
	if len(model.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrValidation)
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
	if _, err := order.ParsePaymentMethod(string(model.PaymentMethod)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if model.PaymentMethod == order.PaymentMethodCard {
		if s.confirmer == nil {
			return fmt.Errorf("%w: payment client is not initialized", ErrValidation)
		}
		if model.Card == nil {
			return fmt.Errorf("%w: card details are required for card payment", ErrValidation)
		}
	}

	return nil
}

func (s *CheckoutService) buildSummary(model CheckoutModel) order.Summary {
	subtotal := cart.Subtotal(model.Items)

	return order.Summary{
		Subtotal:      subtotal,
		DeliveryFee:   s.deliveryFee,
		Discount:      model.Discount,
		Total:         subtotal + s.deliveryFee - model.Discount,
		EstimatedTime: fmt.Sprintf("%d mins", defaultEstimatedMinutes()),
	}
}

func lineItems(items []cart.Item) []order.LineItem {
	result := make([]order.LineItem, len(items))
	for i, it := range items {
		result[i] = order.LineItem{
			ItemID:         it.ItemID,
			Name:           it.Name,
			Price:          it.Price,
			Quantity:       it.Quantity,
			RestaurantID:   it.RestaurantID,
			RestaurantName: it.RestaurantName,
		}
	}

	return result
}

func defaultEstimatedMinutes() int {
	if minutes := viper.GetInt("orders.delivery_buffer_minutes"); minutes > 0 {
		return minutes
	}

	return 45
}
