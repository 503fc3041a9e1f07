package model

// Product is the catalog record for one item, as served by the store's
// public product endpoint.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // tax-inclusive, CLP
	Stock    int    `json:"stock"`
	ImageURL string `json:"image_url,omitempty"`

	WeightKG float64 `json:"weight_kg,omitempty"`
	LengthCM float64 `json:"length_cm,omitempty"`
	WidthCM  float64 `json:"width_cm,omitempty"`
	HeightCM float64 `json:"height_cm,omitempty"`
}

// Profile is the authenticated user's account summary.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
