package model

// DeliveryType selects how an order reaches the buyer.
type DeliveryType string

const (
	// DeliveryShip sends the order by courier to a destination address.
	DeliveryShip DeliveryType = "ship"
	// DeliveryPickup is in-store pickup; shipping cost is always zero.
	DeliveryPickup DeliveryType = "pickup"
)

// Valid reports whether d is a known delivery type.
func (d DeliveryType) Valid() bool {
	return d == DeliveryShip || d == DeliveryPickup
}

// CartLine is the unified view of one cart entry, regardless of whether it
// came from the local guest cart or the server cart.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"` // tax-inclusive, CLP
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`

	// Physical attributes used to build shipping manifests.
	// Zero values mean the product record carries none; manifest
	// construction substitutes defaults.
	WeightKG float64 `json:"weight_kg,omitempty"`
	LengthCM float64 `json:"length_cm,omitempty"`
	WidthCM  float64 `json:"width_cm,omitempty"`
	HeightCM float64 `json:"height_cm,omitempty"`
}

// Subtotal returns the tax-inclusive line total.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Totals is the priced summary of a cart plus delivery choice.
// Gross is the sum of line subtotals (tax included). Net and Tax decompose
// Gross; they never add anything on top of it.
type Totals struct {
	Gross    int64 `json:"gross"`
	Net      int64 `json:"net"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Grand    int64 `json:"grand"`
}
