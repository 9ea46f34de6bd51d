package sanitize

import (
	"testing"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

func TestSanitizeProduct(t *testing.T) {
	old := stripeapi.Record{
		"id":            "prod_old",
		"object":        "product",
		"livemode":      true,
		"created":       int64(1600000000),
		"updated":       int64(1600000001),
		"default_price": "price_old",
		"name":          "Widget",
		"description":   nil,
		"metadata":      map[string]any{"tier": "gold", "legacy": nil},
	}

	got, err := Sanitize(Product, old, nil)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	for _, key := range []string{"id", "object", "livemode", "created", "updated", "default_price", "description"} {
		if _, ok := got[key]; ok {
			t.Errorf("payload still carries %q", key)
		}
	}
	if got.String("name") != "Widget" {
		t.Errorf("name = %q, want Widget", got.String("name"))
	}
	meta := got.Metadata()
	if meta.String("tier") != "gold" {
		t.Errorf("metadata tier = %q, want gold", meta.String("tier"))
	}
	if _, ok := meta["legacy"]; ok {
		t.Error("null metadata entry survived")
	}

	// The input record must not be touched.
	if old.String("id") != "prod_old" {
		t.Error("input record was mutated")
	}
	if _, ok := old["description"]; !ok {
		t.Error("input record lost its null field")
	}
}

func TestSanitizeForeignKeys(t *testing.T) {
	old := stripeapi.Record{
		"id":       "price_old",
		"object":   "price",
		"product":  "prod_old",
		"currency": "usd",
	}

	got, err := Sanitize(Price, old, map[string]string{"product": "prod_new"})
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got.String("product") != "prod_new" {
		t.Errorf("product = %q, want prod_new", got.String("product"))
	}

	if _, err := Sanitize(Price, old, nil); err == nil {
		t.Error("Sanitize with unresolved foreign key = nil, want error")
	}
}

func TestSanitizeCouponKeepsID(t *testing.T) {
	old := stripeapi.Record{
		"id":             "SPRING24",
		"object":         "coupon",
		"valid":          true,
		"times_redeemed": int64(3),
		"percent_off":    25.0,
	}

	got, err := Sanitize(Coupon, old, nil)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got.String("id") != "SPRING24" {
		t.Errorf("id = %q, want SPRING24", got.String("id"))
	}
	for _, key := range []string{"object", "valid", "times_redeemed"} {
		if _, ok := got[key]; ok {
			t.Errorf("payload still carries %q", key)
		}
	}
}

func TestSanitizeUnknownKind(t *testing.T) {
	if _, err := Sanitize(Kind("customer"), stripeapi.Record{}, nil); err == nil {
		t.Error("Sanitize(unknown kind) = nil, want error")
	}
}

func TestRemoveNullNested(t *testing.T) {
	rec := stripeapi.Record{
		"a": nil,
		"b": map[string]any{
			"c": nil,
			"d": "keep",
		},
		"e": []any{
			map[string]any{"f": nil, "g": int64(1)},
		},
	}

	got := removeNull(rec)
	if _, ok := got["a"]; ok {
		t.Error("top-level null survived")
	}
	inner := got.Map("b")
	if _, ok := inner["c"]; ok {
		t.Error("nested null survived")
	}
	if inner.String("d") != "keep" {
		t.Error("non-null nested value lost")
	}
	elem := stripeapi.Record(got.Slice("e")[0].(map[string]any))
	if _, ok := elem["f"]; ok {
		t.Error("null inside slice element survived")
	}
}
