package createorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/services/ordersvc"
	"github.com/feastly/order-svc/internal/transport/http/middleware/auth"
)

type mockService struct {
	CreateOrderFunc func(ctx context.Context, model ordersvc.CreateOrderModel) (*order.Order, error)

	got []ordersvc.CreateOrderModel
}

func (m *mockService) CreateOrder(
	ctx context.Context,
	model ordersvc.CreateOrderModel,
) (*order.Order, error) {
	m.got = append(m.got, model)
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, model)
	}

	return &order.Order{
		OrderID:       "ORD-TEST0001",
		PaymentMethod: model.PaymentMethod,
		PaymentStatus: order.PaymentStatusPending,
		Status:        order.StatusConfirmed,
	}, nil
}

const validBody = `{
	"items": [{"id": "pizza-1", "name": "Margherita", "price": 11.5, "quantity": 2}],
	"deliveryInfo": {"name": "Dana", "phone": "+1-555-0101", "address": "1 Main St"},
	"orderSummary": {"subtotal": 23.0, "deliveryFee": 5.0, "total": 28.0},
	"paymentMethod": "cash"
}`

func TestCreateOrder(t *testing.T) {
	t.Run("valid request returns 201 with order id", func(t *testing.T) {
		svc := &mockService{}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
		rec := httptest.NewRecorder()

		CreateOrder(rec, req, svc)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body)
		}

		var resp struct {
			Success bool   `json:"success"`
			OrderID string `json:"orderId"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.Success || resp.OrderID != "ORD-TEST0001" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("authenticated user is attached to the order", func(t *testing.T) {
		svc := &mockService{}
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
		req = req.WithContext(auth.WithUserID(req.Context(), "user-7"))
		rec := httptest.NewRecorder()

		CreateOrder(rec, req, svc)

		if len(svc.got) != 1 || svc.got[0].UserID != "user-7" {
			t.Errorf("service got %+v, want userID user-7", svc.got)
		}
	})

	t.Run("malformed json returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		CreateOrder(rec, req, &mockService{})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing fields return 400 before the service is called", func(t *testing.T) {
		svc := &mockService{}
		body := `{"items": [], "paymentMethod": "cash"}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		CreateOrder(rec, req, svc)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if len(svc.got) != 0 {
			t.Error("invalid payload must not reach the service")
		}
	})

	t.Run("unknown payment method returns 400", func(t *testing.T) {
		body := strings.Replace(validBody, `"cash"`, `"crypto"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		CreateOrder(rec, req, &mockService{})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}
