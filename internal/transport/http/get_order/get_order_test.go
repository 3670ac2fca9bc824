package getorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/feastly/order-svc/internal/service/models/order"
)

type mockService struct {
	GetOrderFunc func(ctx context.Context, orderID string) (*order.Order, error)
}

func (m *mockService) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID)
	}

	return nil, order.ErrOrderNotFound
}

func newRequest(orderID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestGetOrder(t *testing.T) {
	t.Run("known order returns 200", func(t *testing.T) {
		svc := &mockService{
			GetOrderFunc: func(_ context.Context, orderID string) (*order.Order, error) {
				return &order.Order{OrderID: orderID, Status: order.StatusConfirmed}, nil
			},
		}
		rec := httptest.NewRecorder()

		GetOrder(rec, newRequest("ORD-TEST0001"), svc)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Success bool         `json:"success"`
			Order   *order.Order `json:"order"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.Success || resp.Order.OrderID != "ORD-TEST0001" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("unknown order returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()

		GetOrder(rec, newRequest("ORD-MISSING"), &mockService{})

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}

		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Success || resp.Message != "Order not found" {
			t.Errorf("response = %+v", resp)
		}
	})
}
