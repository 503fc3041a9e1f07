package shipping

import (
	"context"
	"errors"
	"testing"

	"autoparts-storefront/internal/model"
)

type fakeGeoAPI struct {
	regionCalls   int
	coverageCalls int
	err           error
}

func (f *fakeGeoAPI) Regions(ctx context.Context) ([]model.Region, error) {
	f.regionCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Region{{ID: "R13", Name: "Metropolitana"}}, nil
}

func (f *fakeGeoAPI) Coverage(ctx context.Context, regionID string) ([]model.CoverageArea, error) {
	f.coverageCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.CoverageArea{{CountyCode: "13101", Name: "Santiago"}}, nil
}

func TestCatalogCachesRegions(t *testing.T) {
	api := &fakeGeoAPI{}
	catalog := NewCatalog(api)

	for i := 0; i < 3; i++ {
		regions, err := catalog.Regions(context.Background())
		if err != nil {
			t.Fatalf("Regions: %v", err)
		}
		if len(regions) != 1 || regions[0].ID != "R13" {
			t.Errorf("regions = %+v", regions)
		}
	}
	if api.regionCalls != 1 {
		t.Errorf("backend hit %d times, want 1", api.regionCalls)
	}
}

func TestCatalogCachesCoveragePerRegion(t *testing.T) {
	api := &fakeGeoAPI{}
	catalog := NewCatalog(api)

	catalog.Coverage(context.Background(), "R13")
	catalog.Coverage(context.Background(), "R13")
	if api.coverageCalls != 1 {
		t.Errorf("backend hit %d times for same region, want 1", api.coverageCalls)
	}

	catalog.Coverage(context.Background(), "R5")
	if api.coverageCalls != 2 {
		t.Errorf("backend hit %d times after new region, want 2", api.coverageCalls)
	}
}

func TestCatalogDoesNotCacheFailures(t *testing.T) {
	api := &fakeGeoAPI{err: model.NewNetworkError("store", errors.New("down"))}
	catalog := NewCatalog(api)

	if _, err := catalog.Regions(context.Background()); !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}

	api.err = nil
	if _, err := catalog.Regions(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if api.regionCalls != 2 {
		t.Errorf("regionCalls = %d, want 2", api.regionCalls)
	}
}

func TestCatalogCoverageValidation(t *testing.T) {
	catalog := NewCatalog(&fakeGeoAPI{})
	if _, err := catalog.Coverage(context.Background(), ""); !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
