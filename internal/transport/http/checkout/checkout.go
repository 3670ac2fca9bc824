package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/service/models/cart"
	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/services/checkoutsvc"
	"github.com/feastly/order-svc/internal/transport/http/middleware/auth"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	Checkout(ctx context.Context, model checkoutsvc.CheckoutModel) (*checkoutsvc.CheckoutResult, error)
}

type itemInCheckoutRequest struct {
	ItemID         string  `json:"id"             validate:"required"`
	Name           string  `json:"name"           validate:"required"`
	Price          float64 `json:"price"          validate:"gte=0"`
	Quantity       int     `json:"quantity"       validate:"gt=0"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

type cardInCheckoutRequest struct {
	Number   string `json:"number"   validate:"required"`
	ExpMonth int64  `json:"expMonth" validate:"required"`
	ExpYear  int64  `json:"expYear"  validate:"required"`
	CVC      string `json:"cvc"      validate:"required"`
}

type deliveryInfoInCheckoutRequest struct {
	Name       string `json:"name"       validate:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"      validate:"required"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes"`
}

// checkoutRequest represents a checkout request.
type checkoutRequest struct {
	Items         []itemInCheckoutRequest       `json:"items"         validate:"required,min=1,dive"`
	DeliveryInfo  deliveryInfoInCheckoutRequest `json:"deliveryInfo"  validate:"required"`
	PaymentMethod string                        `json:"paymentMethod" validate:"required,oneof=card cash"`
	Card          *cardInCheckoutRequest        `json:"card"          validate:"required_if=PaymentMethod card"`
	Discount      float64                       `json:"discount"      validate:"gte=0"`
}

func (r *checkoutRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *checkoutRequest) toModel(userID string) (checkoutsvc.CheckoutModel, error) {
	method, err := order.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return checkoutsvc.CheckoutModel{}, err
	}

	items := make([]cart.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = cart.Item{
			ItemID:         item.ItemID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			RestaurantID:   item.RestaurantID,
			RestaurantName: item.RestaurantName,
		}
	}

	model := checkoutsvc.CheckoutModel{
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
		PaymentMethod: method,
		Discount:      r.Discount,
		UserID:        userID,
	}
	if r.Card != nil {
		model.Card = &stripedal.CardDetails{
			Number:   r.Card.Number,
			ExpMonth: r.Card.ExpMonth,
			ExpYear:  r.Card.ExpYear,
			CVC:      r.Card.CVC,
		}
	}

	return model, nil
}

type checkoutResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId"`
	ClearCart bool   `json:"clearCart"`
	Message   string `json:"message"`
}

// Checkout handles the checkout request.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body", err)
		slog.Error("Error decoding request body for checkout", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid checkout payload", err)

		return
	}

	model, err := req.toModel(auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid checkout payload", err)

		return
	}

	result, err := service.Checkout(r.Context(), model)
	if err != nil {
		switch {
		case errors.Is(err, checkoutsvc.ErrValidation):
			respond.Error(w, http.StatusBadRequest, "Invalid checkout payload", err)
		case errors.Is(err, checkoutsvc.ErrPaymentDeclined):
			respond.Error(w, http.StatusPaymentRequired, "Payment was declined", err)
			slog.Warn("Checkout payment declined", "error", err)
		default:
			respond.Error(w, http.StatusInternalServerError, "Checkout failed", err)
			slog.Error("Error processing checkout", "error", err)
		}

		return
	}

	respond.JSON(w, http.StatusOK, checkoutResponse{
		Success:   true,
		OrderID:   result.OrderID,
		ClearCart: result.ClearCart,
		Message:   "Order placed successfully",
	})
}
