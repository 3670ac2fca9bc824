package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/services/ordersvc"
	"github.com/feastly/order-svc/internal/transport/http/middleware/auth"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, model ordersvc.CreateOrderModel) (*order.Order, error)
}

// itemInCreateOrderRequest represents a line item in a create order
// request.
type itemInCreateOrderRequest struct {
	ItemID         string  `json:"id"             validate:"required"`
	Name           string  `json:"name"           validate:"required"`
	Price          float64 `json:"price"          validate:"gte=0"`
	Quantity       int     `json:"quantity"       validate:"gt=0"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

type deliveryInfoInCreateOrderRequest struct {
	Name       string `json:"name"       validate:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"      validate:"required"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes"`
}

type summaryInCreateOrderRequest struct {
	Subtotal      float64 `json:"subtotal"    validate:"gte=0"`
	DeliveryFee   float64 `json:"deliveryFee" validate:"gte=0"`
	Discount      float64 `json:"discount"    validate:"gte=0"`
	Total         float64 `json:"total"       validate:"gte=0"`
	EstimatedTime string  `json:"estimatedTime"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Items         []itemInCreateOrderRequest       `json:"items"         validate:"required,min=1,dive"`
	DeliveryInfo  deliveryInfoInCreateOrderRequest `json:"deliveryInfo"  validate:"required"`
	OrderSummary  summaryInCreateOrderRequest      `json:"orderSummary"  validate:"required"`
	PaymentMethod string                           `json:"paymentMethod" validate:"required,oneof=card cash"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel(userID string) (ordersvc.CreateOrderModel, error) {
	method, err := order.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return ordersvc.CreateOrderModel{}, err
	}

	items := make([]order.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.LineItem{
			ItemID:         item.ItemID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			RestaurantID:   item.RestaurantID,
			RestaurantName: item.RestaurantName,
		}
	}

	return ordersvc.CreateOrderModel{
		Items: items,
		DeliveryInfo: order.DeliveryInfo{
			Name:       r.DeliveryInfo.Name,
			Email:      r.DeliveryInfo.Email,
			Phone:      r.DeliveryInfo.Phone,
			Address:    r.DeliveryInfo.Address,
			City:       r.DeliveryInfo.City,
			PostalCode: r.DeliveryInfo.PostalCode,
			Notes:      r.DeliveryInfo.Notes,
		},
		Summary: order.Summary{
			Subtotal:      r.OrderSummary.Subtotal,
			DeliveryFee:   r.OrderSummary.DeliveryFee,
			Discount:      r.OrderSummary.Discount,
			Total:         r.OrderSummary.Total,
			EstimatedTime: r.OrderSummary.EstimatedTime,
		},
		PaymentMethod: method,
		UserID:        userID,
	}, nil
}

type createOrderResponse struct {
	Success bool         `json:"success"`
	OrderID string       `json:"orderId"`
	Order   *order.Order `json:"order"`
	Message string       `json:"message"`
}

// CreateOrder handles the create order request. Guest orders are
// allowed; an authenticated identity attaches the owning user.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body", err)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid order payload", err)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	model, err := req.toModel(auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid order payload", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), model)
	if err != nil {
		if errors.Is(err, ordersvc.ErrValidation) {
			respond.Error(w, http.StatusBadRequest, "Invalid order payload", err)

			return
		}
		respond.Error(w, http.StatusInternalServerError, "Failed to create order", err)
		slog.Error("Error creating order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, createOrderResponse{
		Success: true,
		OrderID: created.OrderID,
		Order:   created,
		Message: "Order created successfully",
	})
}
