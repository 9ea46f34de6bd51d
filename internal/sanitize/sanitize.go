// Package sanitize turns old-account records into new-account creation
// payloads. One generic function consumes a per-kind rule table: fields the
// server assigns are dropped, foreign keys are rewritten to new-account ids,
// and ambiguous numeric encodings are normalized to a single authoritative
// form. Everything here is pure; no remote calls, inputs are never mutated.
package sanitize

import (
	"fmt"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Kind selects a rule table.
type Kind string

const (
	Product       Kind = "product"
	Price         Kind = "price"
	Coupon        Kind = "coupon"
	PromotionCode Kind = "promotion_code"
)

// Rules describes how one kind is sanitized. Drop lists server-assigned and
// read-only fields that must never be replayed on create. ForeignKeys lists
// fields whose values are old-account ids and must be rewritten.
type Rules struct {
	Drop        []string
	ForeignKeys []string
}

var tables = map[Kind]Rules{
	Product: {
		Drop: []string{"id", "object", "livemode", "created", "updated", "default_price"},
	},
	Price: {
		Drop:        []string{"id", "object", "livemode", "created", "type"},
		ForeignKeys: []string{"product"},
	},
	Coupon: {
		// Coupons keep their id: the remote supports idempotent
		// creation by id, which the custom-coupon logic relies on.
		Drop: []string{"object", "livemode", "valid", "created", "times_redeemed"},
	},
	PromotionCode: {
		Drop:        []string{"id", "object", "livemode", "created", "times_redeemed"},
		ForeignKeys: []string{"coupon"},
	},
}

// Sanitize builds the creation payload for one record. newForeignKeys maps
// each of the kind's foreign-key fields to its already-resolved new-account
// id; a declared foreign key without a resolution is an error because the
// payload would silently point at an id from the wrong account.
func Sanitize(kind Kind, rec stripeapi.Record, newForeignKeys map[string]string) (stripeapi.Record, error) {
	rules, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("no sanitize rules for kind %q", kind)
	}

	out := removeNull(rec.Clone())
	for _, key := range rules.Drop {
		delete(out, key)
	}
	for _, key := range rules.ForeignKeys {
		newID, ok := newForeignKeys[key]
		if !ok {
			return nil, fmt.Errorf("sanitize %s: foreign key %q has no new-account id", kind, key)
		}
		out[key] = newID
	}

	if kind == Price {
		normalizePrice(out)
	}
	return out, nil
}

// removeNull strips explicit nulls recursively. The remote serializes absent
// optional fields as null on read, but rejects null on create.
func removeNull(rec stripeapi.Record) stripeapi.Record {
	for k, v := range rec {
		switch t := v.(type) {
		case nil:
			delete(rec, k)
		case map[string]any:
			rec[k] = map[string]any(removeNull(stripeapi.Record(t)))
		case []any:
			for i, e := range t {
				if m, ok := e.(map[string]any); ok {
					t[i] = map[string]any(removeNull(stripeapi.Record(m)))
				}
			}
		}
	}
	return rec
}
