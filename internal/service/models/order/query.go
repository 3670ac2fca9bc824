package order

// QueryOrdersModel represents filter parameters for querying orders.
// Results are always sorted newest-first.
type QueryOrdersModel struct {
	OrderIDs []string `json:"orderIds,omitempty"`
	UserIDs  []string `json:"userIds,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// UpdateOrderModel carries a partial field-level update of an order's
// status and payment fields. Nil fields are left untouched; fields
// written at creation time (items, delivery info, summary) are never
// updatable through this path.
type UpdateOrderModel struct {
	Status          *Status
	PaymentStatus   *PaymentStatus
	PaymentIntentID *string
}

// Empty reports whether the update carries no field at all.
func (u UpdateOrderModel) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.PaymentIntentID == nil
}
