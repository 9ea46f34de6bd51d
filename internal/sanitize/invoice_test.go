package sanitize

import (
	"testing"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

func TestInvoiceParams(t *testing.T) {
	old := stripeapi.Record{
		"id":                "in_old",
		"customer":          map[string]any{"id": "cus_1"},
		"collection_method": "send_invoice",
		"description":       "March usage",
		"metadata":          map[string]any{"order": "42"},
		"default_tax_rates": []any{
			map[string]any{"id": "txr_1"},
			"txr_2",
		},
	}

	params := InvoiceParams(old)

	if params.Bool("auto_advance") {
		t.Error("auto_advance must be false")
	}
	if params.String("customer") != "cus_1" {
		t.Errorf("customer = %q, want cus_1", params.String("customer"))
	}
	if params.String("pending_invoice_items_behavior") != "exclude" {
		t.Errorf("pending_invoice_items_behavior = %q", params.String("pending_invoice_items_behavior"))
	}
	if params.String("collection_method") != "send_invoice" {
		t.Errorf("collection_method = %q", params.String("collection_method"))
	}
	rates, ok := params["default_tax_rates"].([]string)
	if !ok || len(rates) != 2 || rates[0] != "txr_1" || rates[1] != "txr_2" {
		t.Errorf("default_tax_rates = %v", params["default_tax_rates"])
	}
}

func TestInvoiceItemParams(t *testing.T) {
	line := stripeapi.Record{
		"id":          "il_1",
		"description": "Seats",
		"quantity":    int64(4),
		"price": map[string]any{
			"id":          "price_old",
			"currency":    "usd",
			"unit_amount": int64(2500),
		},
	}

	params := InvoiceItemParams(line, "in_new", "cus_1")

	if params.String("invoice") != "in_new" || params.String("customer") != "cus_1" {
		t.Errorf("targets = %q/%q", params.String("invoice"), params.String("customer"))
	}
	if params.String("currency") != "usd" || params.Int64("unit_amount") != 2500 {
		t.Errorf("amount = %q %d", params.String("currency"), params.Int64("unit_amount"))
	}
	if params.Int64("quantity") != 4 {
		t.Errorf("quantity = %d, want 4", params.Int64("quantity"))
	}
	if _, ok := params["unit_amount_decimal"]; ok {
		t.Error("decimal amount set alongside integer amount")
	}
}

func TestInvoiceItemParamsDecimalFallback(t *testing.T) {
	line := stripeapi.Record{
		"price": map[string]any{
			"currency":            "usd",
			"unit_amount":         nil,
			"unit_amount_decimal": "0.25",
		},
	}

	params := InvoiceItemParams(line, "in_new", "cus_1")
	if params.String("unit_amount_decimal") != "0.25" {
		t.Errorf("unit_amount_decimal = %q, want 0.25", params.String("unit_amount_decimal"))
	}
	if _, ok := params["unit_amount"]; ok {
		t.Error("null unit_amount carried over")
	}
}
