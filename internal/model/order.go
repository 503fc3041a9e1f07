package model

// OrderDraft is everything the store needs to create an order.
// Lines reflect the server cart at submission time; the backend re-validates
// stock and pricing on its side.
type OrderDraft struct {
	Delivery      DeliveryType `json:"delivery"`
	Destination   *Destination `json:"destination,omitempty"` // required for ship
	ShippingCost  int64        `json:"shipping_cost"`
	Lines         []CartLine   `json:"lines"`
	PaymentMethod string       `json:"payment_method"`
	TotalAmount   int64        `json:"total_amount"` // gross plus shipping, for backend cross-check
	Email         string       `json:"email"`
	Notes         string       `json:"notes,omitempty"`
}

// Order is a created order awaiting payment.
type Order struct {
	ID         int64  `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}
