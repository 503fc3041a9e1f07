package api

// Wire types for the store backend API. Money fields arrive as strings
// ("4760" or "4760.00"); transform.go converts them to int64 pesos.

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"` // DRF-style errors
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type cartResponse struct {
	Items []cartLinePayload `json:"cart"`
}

type cartLinePayload struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     string  `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
	WeightKG  float64 `json:"weight_kg"`
	LengthCM  float64 `json:"length_cm"`
	WidthCM   float64 `json:"width_cm"`
	HeightCM  float64 `json:"height_cm"`
}

type addItemRequest struct {
	Quantity int `json:"quantity"`
}

type productPayload struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"image_url"`
	WeightKG float64 `json:"weight_kg"`
	LengthCM float64 `json:"length_cm"`
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
}

type regionsResponse struct {
	Success bool            `json:"success"`
	Regions []regionPayload `json:"regions"`
	Error   string          `json:"error"`
}

type regionPayload struct {
	RegionID   string `json:"regionId"`
	RegionName string `json:"regionName"`
}

type coverageResponse struct {
	Success bool              `json:"success"`
	Areas   []coveragePayload `json:"areas"`
	Error   string            `json:"error"`
}

type coveragePayload struct {
	CountyCode   string `json:"countyCode"`
	CoverageName string `json:"coverageName"`
}

type quoteRequest struct {
	DestinationCounty string         `json:"destination_county"`
	Package           packagePayload `json:"package"`
}

type packagePayload struct {
	WeightKG      float64 `json:"weight_kg"`
	LengthCM      float64 `json:"length_cm"`
	WidthCM       float64 `json:"width_cm"`
	HeightCM      float64 `json:"height_cm"`
	DeclaredWorth int64   `json:"declared_worth"`
}

type quoteResponse struct {
	Success bool           `json:"success"`
	Options []quotePayload `json:"options"`
	Error   string         `json:"error"`
}

type quotePayload struct {
	Service     string `json:"service"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ETA         string `json:"eta"`
}

type orderRequest struct {
	DeliveryType  string           `json:"delivery_type"`
	Address       string           `json:"address,omitempty"`
	CountyCode    string           `json:"county_code,omitempty"`
	RegionID      string           `json:"region_id,omitempty"`
	ShippingCost  int64            `json:"shipping_cost"`
	PaymentMethod string           `json:"payment_method"`
	TotalAmount   int64            `json:"total_amount"`
	Email         string           `json:"email"`
	Notes         string           `json:"notes,omitempty"`
	Items         []orderItemEntry `json:"items"`
}

type orderItemEntry struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	OrderID int64 `json:"order_id"`
}
