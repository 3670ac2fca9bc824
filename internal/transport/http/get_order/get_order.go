package getorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
}

type getOrderResponse struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order"`
}

// GetOrder handles the get order request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		respond.Error(w, http.StatusBadRequest, "Order id is required", nil)

		return
	}

	found, err := service.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respond.Error(w, http.StatusNotFound, "Order not found", err)

			return
		}
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch order", err)
		slog.Error("Error fetching order", "error", err, "order_id", orderID)

		return
	}

	respond.JSON(w, http.StatusOK, getOrderResponse{Success: true, Order: found})
}
