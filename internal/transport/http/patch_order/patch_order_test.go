package patchorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/models/statuslog"
)

type mockService struct {
	PatchOrderFunc func(ctx context.Context, orderID string, update order.UpdateOrderModel, source string) (*order.Order, error)

	gotUpdate order.UpdateOrderModel
	gotSource string
}

func (m *mockService) PatchOrder(
	ctx context.Context,
	orderID string,
	update order.UpdateOrderModel,
	source string,
) (*order.Order, error) {
	m.gotUpdate = update
	m.gotSource = source
	if m.PatchOrderFunc != nil {
		return m.PatchOrderFunc(ctx, orderID, update, source)
	}

	return &order.Order{OrderID: orderID}, nil
}

func newRequest(orderID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+orderID, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPatchOrder(t *testing.T) {
	t.Run("status-only patch is attributed to admin", func(t *testing.T) {
		svc := &mockService{}
		rec := httptest.NewRecorder()

		PatchOrder(rec, newRequest("ORD-1", `{"status": "preparing"}`), svc)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body)
		}
		if svc.gotSource != statuslog.SourceAdmin {
			t.Errorf("source = %q, want admin", svc.gotSource)
		}
		if svc.gotUpdate.Status == nil || *svc.gotUpdate.Status != order.StatusPreparing {
			t.Errorf("update = %+v, want status preparing", svc.gotUpdate)
		}
	})

	t.Run("payment patch is attributed to the client", func(t *testing.T) {
		svc := &mockService{}
		rec := httptest.NewRecorder()

		body := `{"paymentStatus": "paid", "paymentIntentId": "pi_1", "status": "confirmed"}`
		PatchOrder(rec, newRequest("ORD-1", body), svc)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if svc.gotSource != statuslog.SourceClient {
			t.Errorf("source = %q, want client", svc.gotSource)
		}
	})

	t.Run("unknown status value returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()

		PatchOrder(rec, newRequest("ORD-1", `{"status": "teleported"}`), &mockService{})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("empty patch returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()

		PatchOrder(rec, newRequest("ORD-1", `{}`), &mockService{})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown order returns 404", func(t *testing.T) {
		svc := &mockService{
			PatchOrderFunc: func(context.Context, string, order.UpdateOrderModel, string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
		}
		rec := httptest.NewRecorder()

		PatchOrder(rec, newRequest("ORD-MISSING", `{"status": "preparing"}`), svc)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
