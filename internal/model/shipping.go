package model

// Region is one first-level administrative division served by the carrier.
type Region struct {
	ID   string `json:"region_id"`
	Name string `json:"region_name"`
}

// CoverageArea is one comuna (county) the carrier delivers to within a region.
type CoverageArea struct {
	CountyCode string `json:"county_code"`
	Name       string `json:"coverage_name"`
}

// Destination identifies where a shipped order goes.
type Destination struct {
	RegionID   string `json:"region_id"`
	CountyCode string `json:"county_code"`
	Address    string `json:"address"`
}

// Package is the consolidated parcel quoted to the carrier.
// One cart produces one package: weight and length accumulate across lines,
// width and height take the largest line, declared worth is the cart gross.
type Package struct {
	WeightKG      float64 `json:"weight_kg"`
	LengthCM      float64 `json:"length_cm"`
	WidthCM       float64 `json:"width_cm"`
	HeightCM      float64 `json:"height_cm"`
	DeclaredWorth int64   `json:"declared_worth"`
}

// Quote is one shipping service option returned by the carrier.
type Quote struct {
	ServiceName string `json:"service_name"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"` // CLP
	ETA         string `json:"eta,omitempty"`
}
