package order

import (
	"errors"
	"time"
)

// Status represents the fulfilment state of an order.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// PaymentStatus represents the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethod is the method chosen at checkout.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

var (
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderID     = errors.New("duplicate order id")
)

// ParseStatus validates a status value coming from an API payload.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingPayment, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParsePaymentStatus validates a payment status value.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return PaymentStatus(s), nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// ParsePaymentMethod validates a payment method value.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodCash:
		return PaymentMethod(s), nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// LineItem is a creation-time snapshot of one ordered dish. Name, price
// and restaurant name are copied from the catalog when the order is
// created and are never recomputed from live catalog data.
type LineItem struct {
	ItemID         string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

// DeliveryInfo is the contact and address block captured at checkout.
type DeliveryInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes,omitempty"`
}

// Summary is the priced breakdown snapshot taken at order creation.
type Summary struct {
	Subtotal      float64 `json:"subtotal"`
	DeliveryFee   float64 `json:"deliveryFee"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	EstimatedTime string  `json:"estimatedTime"`
}

// Order is the central entity of the order lifecycle. OrderID is the
// public human-readable identifier, distinct from the internal row id,
// and is immutable once assigned.
type Order struct {
	ID                    int64         `json:"-"`
	OrderID               string        `json:"orderId"`
	UserID                string        `json:"userId,omitempty"`
	Items                 []LineItem    `json:"items"`
	DeliveryInfo          DeliveryInfo  `json:"deliveryInfo"`
	Summary               Summary       `json:"orderSummary"`
	PaymentMethod         PaymentMethod `json:"paymentMethod"`
	PaymentStatus         PaymentStatus `json:"paymentStatus"`
	Status                Status        `json:"status"`
	PaymentIntentID       string        `json:"paymentIntentId,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
	EstimatedDeliveryTime time.Time     `json:"estimatedDeliveryTime"`
	DeliveredAt           *time.Time    `json:"deliveredAt,omitempty"`
}
