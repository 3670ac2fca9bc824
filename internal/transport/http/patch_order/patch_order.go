package patchorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/models/statuslog"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	PatchOrder(ctx context.Context, orderID string, update order.UpdateOrderModel, source string) (*order.Order, error)
}

type patchOrderRequest struct {
	Status          *string `json:"status"`
	PaymentStatus   *string `json:"paymentStatus"`
	PaymentIntentID *string `json:"paymentIntentId"`
}

func (r *patchOrderRequest) toModel() (order.UpdateOrderModel, error) {
	var update order.UpdateOrderModel

	if r.Status != nil {
		status, err := order.ParseStatus(*r.Status)
		if err != nil {
			return order.UpdateOrderModel{}, err
		}
		update.Status = &status
	}
	if r.PaymentStatus != nil {
		paymentStatus, err := order.ParsePaymentStatus(*r.PaymentStatus)
		if err != nil {
			return order.UpdateOrderModel{}, err
		}
		update.PaymentStatus = &paymentStatus
	}
	update.PaymentIntentID = r.PaymentIntentID

	return update, nil
}

// source reports which actor the patch is attributed to in the status
// log. Payment-bearing patches come from the storefront client after a
// confirmed charge, everything else is treated as an admin action.
func (r *patchOrderRequest) source() string {
	if r.PaymentStatus != nil || r.PaymentIntentID != nil {
		return statuslog.SourceClient
	}

	return statuslog.SourceAdmin
}

type patchOrderResponse struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order"`
	Message string       `json:"message"`
}

// PatchOrder handles the patch order request.
func PatchOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		respond.Error(w, http.StatusBadRequest, "Order id is required", nil)

		return
	}

	var req patchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body", err)
		slog.Error("Error decoding request body for patch order", "error", err)

		return
	}

	update, err := req.toModel()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid order update", err)

		return
	}
	if update.Empty() {
		respond.Error(w, http.StatusBadRequest, "No fields to update", nil)

		return
	}

	updated, err := service.PatchOrder(r.Context(), orderID, update, req.source())
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respond.Error(w, http.StatusNotFound, "Order not found", err)

			return
		}
		respond.Error(w, http.StatusInternalServerError, "Failed to update order", err)
		slog.Error("Error updating order", "error", err, "order_id", orderID)

		return
	}

	respond.JSON(w, http.StatusOK, patchOrderResponse{
		Success: true,
		Order:   updated,
		Message: "Order updated successfully",
	})
}
