package api

import (
	"context"
	"fmt"
	"net/http"

	"autoparts-storefront/internal/model"
)

// === Public Catalog & Georeference ===

// GetProduct fetches one catalog record. No token required.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	path := fmt.Sprintf(pathProduct, productID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("creating product request: %w", err)
	}

	var resp productPayload
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return productFromPayload(resp), nil
}

// Regions lists the carrier's serviced regions.
func (c *Client) Regions(ctx context.Context) ([]model.Region, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathRegions, nil, "")
	if err != nil {
		return nil, fmt.Errorf("creating regions request: %w", err)
	}

	var resp regionsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, model.NewServerRejectedError(http.StatusBadGateway, resp.Error)
	}

	regions := make([]model.Region, 0, len(resp.Regions))
	for _, r := range resp.Regions {
		regions = append(regions, model.Region{ID: r.RegionID, Name: r.RegionName})
	}
	return regions, nil
}

// Coverage lists the comunas the carrier delivers to within a region.
func (c *Client) Coverage(ctx context.Context, regionID string) ([]model.CoverageArea, error) {
	if regionID == "" {
		return nil, model.NewValidationError("region_id", "required")
	}

	path := fmt.Sprintf(pathCoverage, regionID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("creating coverage request: %w", err)
	}

	var resp coverageResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, model.NewServerRejectedError(http.StatusBadGateway, resp.Error)
	}

	areas := make([]model.CoverageArea, 0, len(resp.Areas))
	for _, a := range resp.Areas {
		areas = append(areas, model.CoverageArea{CountyCode: a.CountyCode, Name: a.CoverageName})
	}
	return areas, nil
}
