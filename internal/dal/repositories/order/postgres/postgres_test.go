package postgresrepo

import (
	"testing"
	"time"

	"github.com/feastly/order-svc/internal/service/models/order"
)

func sampleOrder(userID string) order.Order {
	now := time.Now()

	return order.Order{
		OrderID: "ORD-TEST0001",
		UserID:  userID,
		Items: []order.LineItem{
			{ItemID: "pizza-1", Name: "Margherita", Price: 11.5, Quantity: 2},
		},
		DeliveryInfo: order.DeliveryInfo{
			Name:    "Dana",
			Phone:   "+1-555-0101",
			Address: "1 Main St",
		},
		Summary: order.Summary{
			Subtotal:    23.0,
			DeliveryFee: 5.0,
			Total:       28.0,
		},
		PaymentMethod:         order.PaymentMethodCash,
		PaymentStatus:         order.PaymentStatusPending,
		Status:                order.StatusConfirmed,
		CreatedAt:             now,
		UpdatedAt:             now,
		EstimatedDeliveryTime: now.Add(45 * time.Minute),
	}
}

func TestOrderDalFromModel_GuestUserMapsToNull(t *testing.T) {
	// Guest orders carry no user id; the column is nullable and the
	// insert sends NULL rather than an empty string.
	o := sampleOrder("")

	dal, err := OrderDalFromModel(&o)
	if err != nil {
		t.Fatalf("OrderDalFromModel() error = %v", err)
	}
	if dal.UserID.Valid {
		t.Errorf("guest UserID = %+v, want invalid NullString (NULL)", dal.UserID)
	}

	back, err := dal.ToModel()
	if err != nil {
		t.Fatalf("ToModel() error = %v", err)
	}
	if back.UserID != "" {
		t.Errorf("round-tripped guest UserID = %q, want empty", back.UserID)
	}
}

func TestOrderDalFromModel_AuthenticatedUserIsKept(t *testing.T) {
	o := sampleOrder("user-7")

	dal, err := OrderDalFromModel(&o)
	if err != nil {
		t.Fatalf("OrderDalFromModel() error = %v", err)
	}
	if !dal.UserID.Valid || dal.UserID.String != "user-7" {
		t.Errorf("UserID = %+v, want valid user-7", dal.UserID)
	}
}
