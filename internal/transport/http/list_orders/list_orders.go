package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/transport/http/middleware/auth"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	ListOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type listOrdersRequest struct {
	OrderID string `schema:"orderId"`
	Limit   int    `schema:"limit"`
	Offset  int    `schema:"offset"`
}

type listOrdersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

// ListOrders handles the list orders request. Without an explicit
// orderId filter the listing is scoped to the authenticated user.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	var req listOrdersRequest
	if err := schema.NewDecoder().Decode(&req, r.URL.Query()); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid query parameters", err)
		slog.Error("Error decoding query parameters for list orders", "error", err)

		return
	}

	filter := &order.QueryOrdersModel{
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	switch {
	case req.OrderID != "":
		filter.OrderIDs = []string{req.OrderID}
	default:
		userID := auth.UserID(r.Context())
		if userID == "" {
			respond.Error(w, http.StatusUnauthorized, "Authentication required", nil)

			return
		}
		filter.UserIDs = []string{userID}
	}

	orders, err := service.ListOrders(r.Context(), filter)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch orders", err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, listOrdersResponse{Success: true, Orders: orders})
}
