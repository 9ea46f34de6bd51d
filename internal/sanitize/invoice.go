package sanitize

import "github.com/billhop/stripe-migrate/internal/stripeapi"

// InvoiceParams builds the draft-invoice creation payload for a settled
// old-account invoice. The draft never auto-advances: the migrated invoice
// is finalized and marked paid out of band by the migrator, payment is not
// collected again.
func InvoiceParams(old stripeapi.Record) stripeapi.Record {
	params := stripeapi.Record{
		"auto_advance":                   false,
		"customer":                       old.ID("customer"),
		"pending_invoice_items_behavior": "exclude",
		"metadata":                       map[string]any(removeNull(old.Metadata().Clone())),
	}
	if v := old.String("collection_method"); v != "" {
		params["collection_method"] = v
	}
	if v := old.Int64("application_fee_amount"); v > 0 {
		params["application_fee_amount"] = v
	}
	if v := old.ID("default_payment_method"); v != "" {
		params["default_payment_method"] = v
	}
	if v := old.ID("default_source"); v != "" {
		params["default_source"] = v
	}
	if rates := old.Slice("default_tax_rates"); len(rates) > 0 {
		ids := make([]string, 0, len(rates))
		for _, r := range rates {
			switch t := r.(type) {
			case string:
				ids = append(ids, t)
			case map[string]any:
				ids = append(ids, stripeapi.Record(t).String("id"))
			}
		}
		params["default_tax_rates"] = ids
	}
	if v := old.Slice("custom_fields"); len(v) > 0 {
		params["custom_fields"] = v
	}
	if v := old.String("description"); v != "" {
		params["description"] = v
	}
	if v := old.String("footer"); v != "" {
		params["footer"] = v
	}
	return params
}

// InvoiceItemParams collapses one invoice line into an independent invoice
// item: raw amount, currency, description and quantity. The new invoice
// deliberately does not reference the old price catalog.
func InvoiceItemParams(line stripeapi.Record, invoiceID, customerID string) stripeapi.Record {
	params := stripeapi.Record{
		"invoice":  invoiceID,
		"customer": customerID,
	}
	if price := line.Map("price"); price != nil {
		if v := price.String("currency"); v != "" {
			params["currency"] = v
		}
		if amount, ok := price["unit_amount"]; ok && amount != nil {
			params["unit_amount"] = amount
		} else if decimal, ok := price["unit_amount_decimal"]; ok && decimal != nil {
			params["unit_amount_decimal"] = decimal
		}
	}
	if v := line.String("description"); v != "" {
		params["description"] = v
	}
	if q, ok := line["quantity"]; ok && q != nil {
		params["quantity"] = q
	}
	return params
}
