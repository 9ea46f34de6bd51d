package migrate

import (
	"context"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Coupons copies every still-redeemable coupon. Coupons keep their ids
// across accounts, so a duplicate-id rejection from the new account means a
// previous run already created the coupon and only the mapping file is
// missing the entry.
func (m *Migrator) Coupons(ctx context.Context, coupons *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachCoupon(ctx, func(old stripeapi.Record) error {
		st.Total++
		oldID := old.String("id")

		if newID, ok := coupons.Get(oldID); ok {
			m.skipped(&st, "coupon", oldID, "already migrated as "+newID)
			return nil
		}
		// An expired coupon can never apply another discount; migrating it
		// would be meaningless.
		if redeemBy := old.Int64("redeem_by"); redeemBy > 0 && redeemBy <= m.now().Unix() {
			m.skipped(&st, "coupon", oldID, "redemption deadline passed")
			return nil
		}

		payload, err := sanitize.Sanitize(sanitize.Coupon, old, nil)
		if err != nil {
			m.failed(&st, "coupon", oldID, err)
			return nil
		}

		created, err := m.New.CreateCoupon(ctx, payload)
		if err != nil {
			if stripeapi.IsAlreadyExists(err) {
				if err := coupons.Record(oldID, oldID); err != nil {
					return err
				}
				m.skipped(&st, "coupon", oldID, "already exists in destination account")
				return nil
			}
			return fmt.Errorf("failed to create coupon %s: %w", oldID, err)
		}
		if err := coupons.Record(oldID, created.String("id")); err != nil {
			return err
		}
		m.migrated(&st, "coupon", oldID, created.String("id"))
		return nil
	})
	return st, err
}
