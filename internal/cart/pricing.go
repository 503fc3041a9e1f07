package cart

import "autoparts-storefront/internal/model"

// ComputeTotals prices a set of lines for a delivery choice.
// Listed prices already include tax, so Net and Tax are a decomposition of
// Gross, never an addition. Pickup zeroes the shipping cost no matter what
// the caller passes.
func ComputeTotals(lines []model.CartLine, delivery model.DeliveryType, shippingCost int64) model.Totals {
	var gross int64
	for _, line := range lines {
		gross += line.Subtotal()
	}

	if delivery == model.DeliveryPickup {
		shippingCost = 0
	}

	net, tax := model.SplitGross(gross)
	return model.Totals{
		Gross:    gross,
		Net:      net,
		Tax:      tax,
		Shipping: shippingCost,
		Grand:    gross + shippingCost,
	}
}
