package sanitize

import (
	"fmt"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// SubscriptionParams builds the creation payload for a subscription. Unlike
// the table-driven kinds, subscriptions are rebuilt field by field: most of
// the old record (status, period anchors, latest invoice, schedule) is
// server-owned state that cannot be replayed.
//
// resolvePrice maps each item's old price id to its new-account id and
// returns an error for unmapped prices, which fails the whole record: a
// subscription with a partial item set would bill the customer wrongly.
func SubscriptionParams(old stripeapi.Record, resolvePrice func(oldPriceID string) (string, error), automaticTax bool) (stripeapi.Record, error) {
	customerID := old.ID("customer")
	if customerID == "" {
		return nil, fmt.Errorf("subscription %s has no customer id", old.String("id"))
	}

	// Preserve at least the already-paid period: the new subscription
	// starts trialing until the old one would have renewed.
	trialEnd := old.Int64("current_period_end")
	if t := old.Int64("trial_end"); t >= trialEnd {
		trialEnd = t
	}

	var items []any
	for _, raw := range old.Map("items").Data() {
		price := raw.Map("price")
		if price == nil {
			return nil, fmt.Errorf("subscription %s: item %s has no price", old.String("id"), raw.String("id"))
		}
		newPriceID, err := resolvePrice(price.String("id"))
		if err != nil {
			return nil, err
		}
		item := map[string]any{"price": newPriceID}
		if q, ok := raw["quantity"]; ok && q != nil {
			item["quantity"] = q
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", old.String("id"))
	}

	params := stripeapi.Record{
		"customer":      customerID,
		"items":         items,
		"currency":      old.String("currency"),
		"metadata":      map[string]any(removeNull(old.Metadata().Clone())),
		"automatic_tax": map[string]any{"enabled": automaticTax},
		"payment_settings": map[string]any{
			"save_default_payment_method": "on_subscription",
		},
		"trial_end": trialEnd,
	}
	if v := old.String("description"); v != "" {
		params["description"] = v
	}
	if v := old.String("collection_method"); v != "" {
		params["collection_method"] = v
	}
	if v := old.Int64("cancel_at"); v > 0 {
		params["cancel_at"] = v
	}
	if v := old.Int64("days_until_due"); v > 0 {
		params["days_until_due"] = v
	}
	if v := old.Map("pending_invoice_item_interval"); v != nil {
		params["pending_invoice_item_interval"] = map[string]any(removeNull(v.Clone()))
	}
	return params, nil
}
