package cart

// Item is a single selected dish in a client-local cart. Carts live only
// for the duration of a checkout and are never persisted server-side;
// at order creation they are converted into line-item snapshots.
type Item struct {
	ItemID         string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

// Subtotal returns the sum of price x quantity across items.
func Subtotal(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	return total
}
