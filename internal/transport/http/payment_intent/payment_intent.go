package paymentintent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/service/models/currency"
	"github.com/feastly/order-svc/internal/service/services/paymentsvc"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	CreateIntent(ctx context.Context, amount int64, orderID string, cur currency.Currency) (*stripedal.Intent, error)
}

// createIntentRequest represents a create payment intent request. The
// amount is in the smallest currency unit.
type createIntentRequest struct {
	Amount   int64  `json:"amount"   validate:"required,gt=0"`
	OrderID  string `json:"orderId"  validate:"required"`
	Currency string `json:"currency"`
}

func (r *createIntentRequest) Validate() error {
	return validator.New().Struct(r)
}

type createIntentResponse struct {
	Success         bool   `json:"success"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreateIntent handles the create payment intent request.
func CreateIntent(w http.ResponseWriter, r *http.Request, service service) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body", err)
		slog.Error("Error decoding request body for create payment intent", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Amount and order id are required", err)

		return
	}

	cur := currency.CurrencyUSD
	if req.Currency != "" {
		parsed, err := currency.ParseCurrency(req.Currency)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Unsupported currency", err)

			return
		}
		cur = parsed
	}

	intent, err := service.CreateIntent(r.Context(), req.Amount, req.OrderID, cur)
	if err != nil {
		if errors.Is(err, paymentsvc.ErrValidation) {
			respond.Error(w, http.StatusBadRequest, "Amount and order id are required", err)

			return
		}
		respond.Error(w, http.StatusInternalServerError, "Failed to create payment intent", err)
		slog.Error("Error creating payment intent", "error", err, "order_id", req.OrderID)

		return
	}

	respond.JSON(w, http.StatusOK, createIntentResponse{
		Success:         true,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}
