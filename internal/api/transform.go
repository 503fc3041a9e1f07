package api

import "autoparts-storefront/internal/model"

// Wire → model conversions. Centralized so money parsing and field mapping
// stay in one place.

func lineFromPayload(p cartLinePayload) model.CartLine {
	return model.CartLine{
		ProductID: p.ProductID,
		Name:      p.Name,
		UnitPrice: model.ParseAmount(p.Price),
		Quantity:  p.Quantity,
		ImageURL:  p.ImageURL,
		WeightKG:  p.WeightKG,
		LengthCM:  p.LengthCM,
		WidthCM:   p.WidthCM,
		HeightCM:  p.HeightCM,
	}
}

func productFromPayload(p productPayload) *model.Product {
	return &model.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    model.ParseAmount(p.Price),
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
		WeightKG: p.WeightKG,
		LengthCM: p.LengthCM,
		WidthCM:  p.WidthCM,
		HeightCM: p.HeightCM,
	}
}

func quoteFromPayload(p quotePayload) model.Quote {
	return model.Quote{
		ServiceName: p.Service,
		Description: p.Description,
		Cost:        model.ParseAmount(p.Price),
		ETA:         p.ETA,
	}
}

func packageToPayload(pkg model.Package) packagePayload {
	return packagePayload{
		WeightKG:      pkg.WeightKG,
		LengthCM:      pkg.LengthCM,
		WidthCM:       pkg.WidthCM,
		HeightCM:      pkg.HeightCM,
		DeclaredWorth: pkg.DeclaredWorth,
	}
}
