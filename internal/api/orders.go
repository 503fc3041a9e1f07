package api

import (
	"context"
	"fmt"
	"net/http"

	"autoparts-storefront/internal/model"
)

// === Orders ===

// SubmitOrder creates an order from a draft. The backend re-validates stock
// and pricing; a refusal surfaces as SERVER_REJECTED or VALIDATION_ERROR.
// idempotencyKey lets the backend deduplicate if the response is lost.
func (c *Client) SubmitOrder(ctx context.Context, token string, draft *model.OrderDraft, idempotencyKey string) (*model.Order, error) {
	body := &orderRequest{
		DeliveryType:  string(draft.Delivery),
		ShippingCost:  draft.ShippingCost,
		PaymentMethod: draft.PaymentMethod,
		TotalAmount:   draft.TotalAmount,
		Email:         draft.Email,
		Notes:         draft.Notes,
		Items:         make([]orderItemEntry, 0, len(draft.Lines)),
	}
	if draft.Destination != nil {
		body.Address = draft.Destination.Address
		body.CountyCode = draft.Destination.CountyCode
		body.RegionID = draft.Destination.RegionID
	}
	for _, line := range draft.Lines {
		body.Items = append(body.Items, orderItemEntry{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathOrders, body, token)
	if err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	var resp orderResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.OrderID == 0 {
		return nil, model.NewServerRejectedError(http.StatusBadGateway, "order created without id")
	}

	return &model.Order{
		ID:         resp.OrderID,
		PaymentURL: c.PaymentURL(resp.OrderID),
	}, nil
}

// PaymentURL returns the hosted payment page for an order.
func (c *Client) PaymentURL(orderID int64) string {
	return c.baseURL + fmt.Sprintf(pathPayment, orderID)
}
