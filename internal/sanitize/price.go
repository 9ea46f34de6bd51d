package sanitize

import "github.com/billhop/stripe-migrate/internal/stripeapi"

// UnboundedTier is the sentinel the create API expects for the last tier of
// a tiered price, whose upper bound is open-ended.
const UnboundedTier = "inf"

// normalizePrice resolves the encodings a read-side price record carries that
// the create API rejects or treats as ambiguous:
//
//   - exactly one of unit_amount / unit_amount_decimal may be sent, the
//     integer form being authoritative when both are present (same for
//     flat_amount / flat_amount_decimal inside tiers);
//   - a tier without an upper bound is the final, unbounded tier and must be
//     sent as up_to=inf;
//   - the currency_options entry matching the price's own currency is
//     redundant on create and rejected by the remote.
func normalizePrice(price stripeapi.Record) {
	pickAmount(price, "unit_amount", "unit_amount_decimal")
	normalizeTiers(price)

	if options := price.Map("currency_options"); options != nil {
		delete(options, price.String("currency"))
		for _, opt := range options {
			if m, ok := opt.(map[string]any); ok {
				option := stripeapi.Record(m)
				pickAmount(option, "unit_amount", "unit_amount_decimal")
				normalizeTiers(option)
			}
		}
		if len(options) == 0 {
			delete(price, "currency_options")
		}
	}
}

func normalizeTiers(rec stripeapi.Record) {
	for _, t := range rec.Slice("tiers") {
		m, ok := t.(map[string]any)
		if !ok {
			continue
		}
		tier := stripeapi.Record(m)
		pickAmount(tier, "unit_amount", "unit_amount_decimal")
		pickAmount(tier, "flat_amount", "flat_amount_decimal")
		if _, ok := tier["up_to"]; !ok {
			tier["up_to"] = UnboundedTier
		}
	}
}

// pickAmount keeps exactly one of the integer/decimal field pair, preferring
// the integer form.
func pickAmount(rec stripeapi.Record, integerKey, decimalKey string) {
	if _, ok := rec[integerKey]; ok {
		delete(rec, decimalKey)
	}
}
