package stripeapi

import (
	"context"
	"fmt"
)

// Resource operations, grouped by kind. List operations take a callback so
// callers never see pagination state; records are delivered one at a time in
// the order the remote returns them.

func (c *Client) GetAccount(ctx context.Context) (Record, error) {
	return c.get(ctx, "/v1/account", nil)
}

func (c *Client) ForEachProduct(ctx context.Context, fn func(Record) error) error {
	return c.forEach(ctx, "/v1/products", nil, fn)
}

func (c *Client) GetProduct(ctx context.Context, id string) (Record, error) {
	return c.get(ctx, "/v1/products/"+id, nil)
}

func (c *Client) CreateProduct(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/products", params)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, params Record) (Record, error) {
	return c.post(ctx, "/v1/products/"+id, params)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.delete(ctx, "/v1/products/"+id)
	return err
}

func (c *Client) ForEachPrice(ctx context.Context, fn func(Record) error) error {
	params := Record{"expand": []string{"data.currency_options", "data.tiers"}}
	return c.forEach(ctx, "/v1/prices", params, fn)
}

func (c *Client) CreatePrice(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/prices", params)
}

func (c *Client) UpdatePrice(ctx context.Context, id string, params Record) (Record, error) {
	return c.post(ctx, "/v1/prices/"+id, params)
}

func (c *Client) ForEachCoupon(ctx context.Context, fn func(Record) error) error {
	return c.forEach(ctx, "/v1/coupons", nil, fn)
}

func (c *Client) CreateCoupon(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/coupons", params)
}

func (c *Client) ForEachPromotionCode(ctx context.Context, fn func(Record) error) error {
	return c.forEach(ctx, "/v1/promotion_codes", nil, fn)
}

func (c *Client) CreatePromotionCode(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/promotion_codes", params)
}

func (c *Client) ForEachSubscription(ctx context.Context, fn func(Record) error) error {
	return c.forEach(ctx, "/v1/subscriptions", nil, fn)
}

// GetSubscription retrieves one subscription with its items, plans, products
// and discount expanded, which is what the migrators need to detect inline
// prices and reconcile discounts.
func (c *Client) GetSubscription(ctx context.Context, id string) (Record, error) {
	params := Record{"expand": []string{
		"plan",
		"items.data.plan.product",
		"items.data.price.product",
		"items.data.tax_rates",
		"discount.coupon",
	}}
	return c.get(ctx, "/v1/subscriptions/"+id, params)
}

func (c *Client) CreateSubscription(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/subscriptions", params)
}

func (c *Client) UpdateSubscription(ctx context.Context, id string, params Record) (Record, error) {
	return c.post(ctx, "/v1/subscriptions/"+id, params)
}

func (c *Client) ForEachCustomer(ctx context.Context, fn func(Record) error) error {
	return c.forEach(ctx, "/v1/customers", nil, fn)
}

func (c *Client) GetCustomer(ctx context.Context, id string) (Record, error) {
	return c.get(ctx, "/v1/customers/"+id, nil)
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, params Record) (Record, error) {
	return c.post(ctx, "/v1/customers/"+id, params)
}

// ListPaymentMethods returns one page of a customer's payment methods of the
// given type. No customer in a migration carries more than a page of cards.
func (c *Client) ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]Record, error) {
	params := Record{"type": methodType, "limit": pageLimit}
	resp, err := c.get(ctx, fmt.Sprintf("/v1/customers/%s/payment_methods", customerID), params)
	if err != nil {
		return nil, err
	}
	return resp.Data(), nil
}

func (c *Client) ForEachInvoice(ctx context.Context, customerID string, fn func(Record) error) error {
	params := Record{"expand": []string{"data.discounts", "data.lines.data.price"}}
	if customerID != "" {
		params["customer"] = customerID
	}
	return c.forEach(ctx, "/v1/invoices", params, fn)
}

func (c *Client) CreateInvoice(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/invoices", params)
}

func (c *Client) UpdateInvoice(ctx context.Context, id string, params Record) (Record, error) {
	return c.post(ctx, "/v1/invoices/"+id, params)
}

func (c *Client) FinalizeInvoice(ctx context.Context, id string) (Record, error) {
	return c.post(ctx, "/v1/invoices/"+id+"/finalize", Record{"auto_advance": false})
}

func (c *Client) PayInvoiceOutOfBand(ctx context.Context, id string) (Record, error) {
	return c.post(ctx, "/v1/invoices/"+id+"/pay", Record{"paid_out_of_band": true})
}

// SearchInvoices returns the first page of invoices matching a search query.
func (c *Client) SearchInvoices(ctx context.Context, query string) ([]Record, error) {
	resp, err := c.get(ctx, "/v1/invoices/search", Record{"query": query, "limit": pageLimit})
	if err != nil {
		return nil, err
	}
	return resp.Data(), nil
}

func (c *Client) CreateInvoiceItem(ctx context.Context, params Record) (Record, error) {
	return c.post(ctx, "/v1/invoiceitems", params)
}
