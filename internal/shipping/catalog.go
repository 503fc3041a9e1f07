package shipping

import (
	"context"
	"sync"

	"autoparts-storefront/internal/model"
)

// GeoAPI is the backend surface for the carrier's georeference data.
type GeoAPI interface {
	Regions(ctx context.Context) ([]model.Region, error)
	Coverage(ctx context.Context, regionID string) ([]model.CoverageArea, error)
}

// Catalog serves regions and coverage areas with in-memory caching.
// Georeference data changes rarely; one fetch per process is plenty.
type Catalog struct {
	api GeoAPI

	mu       sync.Mutex
	regions  []model.Region
	coverage map[string][]model.CoverageArea
}

// NewCatalog creates a caching catalog over api.
func NewCatalog(api GeoAPI) *Catalog {
	return &Catalog{
		api:      api,
		coverage: make(map[string][]model.CoverageArea),
	}
}

// Regions lists serviced regions, fetching once and caching.
func (c *Catalog) Regions(ctx context.Context) ([]model.Region, error) {
	c.mu.Lock()
	cached := c.regions
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	regions, err := c.api.Regions(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.regions = regions
	c.mu.Unlock()
	return regions, nil
}

// Coverage lists a region's serviced comunas, cached per region.
func (c *Catalog) Coverage(ctx context.Context, regionID string) ([]model.CoverageArea, error) {
	if regionID == "" {
		return nil, model.NewValidationError("region_id", "required")
	}

	c.mu.Lock()
	cached, ok := c.coverage[regionID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	areas, err := c.api.Coverage(ctx, regionID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.coverage[regionID] = areas
	c.mu.Unlock()
	return areas, nil
}
