package sanitize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

func staticResolver(mapping map[string]string) func(string) (string, error) {
	return func(oldID string) (string, error) {
		if newID, ok := mapping[oldID]; ok {
			return newID, nil
		}
		return "", fmt.Errorf("no mapping for %s", oldID)
	}
}

func testSubscription() stripeapi.Record {
	return stripeapi.Record{
		"id":                 "sub_old",
		"customer":           "cus_1",
		"currency":           "usd",
		"current_period_end": int64(1790000000),
		"trial_end":          nil,
		"collection_method":  "charge_automatically",
		"metadata":           map[string]any{"plan_family": "pro", "stale": nil},
		"items": map[string]any{
			"data": []any{
				map[string]any{
					"id":       "si_1",
					"quantity": int64(3),
					"price":    map[string]any{"id": "price_a"},
				},
				map[string]any{
					"id":    "si_2",
					"price": map[string]any{"id": "price_b"},
				},
			},
		},
	}
}

func TestSubscriptionParams(t *testing.T) {
	resolve := staticResolver(map[string]string{"price_a": "price_a_new", "price_b": "price_b_new"})

	params, err := SubscriptionParams(testSubscription(), resolve, true)
	if err != nil {
		t.Fatalf("SubscriptionParams: %v", err)
	}

	if params.String("customer") != "cus_1" {
		t.Errorf("customer = %q, want cus_1", params.String("customer"))
	}
	if params.Int64("trial_end") != 1790000000 {
		t.Errorf("trial_end = %d, want current_period_end", params.Int64("trial_end"))
	}
	if !params.Map("automatic_tax").Bool("enabled") {
		t.Error("automatic_tax not enabled")
	}
	if got := params.Map("payment_settings").String("save_default_payment_method"); got != "on_subscription" {
		t.Errorf("save_default_payment_method = %q", got)
	}
	if _, ok := params.Metadata()["stale"]; ok {
		t.Error("null metadata entry survived")
	}

	items := params.Slice("items")
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	first := stripeapi.Record(items[0].(map[string]any))
	if first.String("price") != "price_a_new" || first.Int64("quantity") != 3 {
		t.Errorf("first item = %v", first)
	}
	second := stripeapi.Record(items[1].(map[string]any))
	if _, ok := second["quantity"]; ok {
		t.Error("item without quantity gained one")
	}
}

func TestSubscriptionParamsTrialEndKeepsLaterTrial(t *testing.T) {
	sub := testSubscription()
	sub["trial_end"] = int64(1795000000)

	params, err := SubscriptionParams(sub, staticResolver(map[string]string{"price_a": "a", "price_b": "b"}), false)
	if err != nil {
		t.Fatalf("SubscriptionParams: %v", err)
	}
	if params.Int64("trial_end") != 1795000000 {
		t.Errorf("trial_end = %d, want later trial_end to win", params.Int64("trial_end"))
	}
	if params.Map("automatic_tax").Bool("enabled") {
		t.Error("automatic_tax enabled without being asked")
	}
}

func TestSubscriptionParamsUnresolvedPrice(t *testing.T) {
	_, err := SubscriptionParams(testSubscription(), staticResolver(map[string]string{"price_a": "a"}), false)
	if err == nil || !strings.Contains(err.Error(), "price_b") {
		t.Errorf("err = %v, want unresolved price_b", err)
	}
}

func TestSubscriptionParamsNoCustomer(t *testing.T) {
	sub := testSubscription()
	delete(sub, "customer")
	if _, err := SubscriptionParams(sub, staticResolver(nil), false); err == nil {
		t.Error("SubscriptionParams without customer = nil, want error")
	}
}

func TestSubscriptionParamsNoItems(t *testing.T) {
	sub := testSubscription()
	sub["items"] = map[string]any{"data": []any{}}
	if _, err := SubscriptionParams(sub, staticResolver(nil), false); err == nil {
		t.Error("SubscriptionParams without items = nil, want error")
	}
}
