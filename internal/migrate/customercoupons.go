package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billhop/stripe-migrate/internal/discount"
	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// CustomerCoupons re-applies customer-level discounts in the new account,
// reconciling repeating discounts to their remaining duration the same way
// subscription discounts are.
func (m *Migrator) CustomerCoupons(ctx context.Context, coupons *idmap.Map, policy discount.ZeroDurationPolicy) (Stats, error) {
	var st Stats
	err := m.Old.ForEachCustomer(ctx, func(customer stripeapi.Record) error {
		st.Total++
		customerID := customer.String("id")

		d := customer.Map("discount")
		if d == nil {
			m.skipped(&st, "customer_coupon", customerID, "no discount")
			return nil
		}
		coupon := d.Map("coupon")
		if coupon == nil {
			m.skipped(&st, "customer_coupon", customerID, "discount has no coupon")
			return nil
		}

		res := discount.Reconcile(coupon, time.Unix(d.Int64("start"), 0), m.now(), policy)
		var couponID string
		var err error
		switch {
		case res.Drop:
			m.skipped(&st, "customer_coupon", customerID, "remaining duration is zero")
			return nil
		case res.UseOriginal:
			couponID, err = coupons.Require(res.CouponID)
		default:
			couponID, err = discount.EnsureCustomCoupon(ctx, m.New, coupon, res)
		}
		if err != nil {
			var missing *idmap.MissingMappingError
			if errors.As(err, &missing) {
				m.failed(&st, "customer_coupon", customerID, err)
				return nil
			}
			return err
		}

		if _, err := m.New.UpdateCustomer(ctx, customerID, stripeapi.Record{"coupon": couponID}); err != nil {
			return fmt.Errorf("failed to apply coupon %s to customer %s: %w", couponID, customerID, err)
		}
		m.migrated(&st, "customer_coupon", customerID, couponID)
		return nil
	})
	return st, err
}
