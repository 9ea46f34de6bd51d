package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billhop/stripe-migrate/internal/discount"
	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// SubscriptionOptions carries the dependency id maps and the policy knobs of
// a subscription migration run.
type SubscriptionOptions struct {
	Subscriptions  *idmap.Map
	Prices         *idmap.Map
	InlineProducts *idmap.Map
	InlinePrices   *idmap.Map
	Coupons        *idmap.Map

	AutomaticTax bool
	ZeroDuration discount.ZeroDurationPolicy
}

// Subscriptions copies active subscriptions into the new account. Per
// record: resolve catalog prices through the price id map, clone inline
// prices as an atomic unit, reconcile any repeating discount to its
// remaining duration, create, then soft-decommission the old subscription
// (marker plus cancellation at period end, never immediate deletion).
func (m *Migrator) Subscriptions(ctx context.Context, opts SubscriptionOptions) (Stats, error) {
	var st Stats
	err := m.Old.ForEachSubscription(ctx, func(sub stripeapi.Record) error {
		st.Total++
		oldID := sub.String("id")

		// The marker on the old record is the authoritative rerun guard; it
		// survives even if the mapping file is lost.
		if dest := sub.Metadata().String(MarkerDestinationID); dest != "" {
			m.skipped(&st, "subscription", oldID, "already migrated as "+dest)
			return nil
		}
		if newID, ok := opts.Subscriptions.Get(oldID); ok {
			m.skipped(&st, "subscription", oldID, "already migrated as "+newID)
			return nil
		}

		// Customers are migrated by a separate process; a missing customer
		// is an expected gap, not an error.
		customerID := sub.ID("customer")
		if _, err := m.New.GetCustomer(ctx, customerID); err != nil {
			if stripeapi.IsNotFound(err) {
				m.skipped(&st, "subscription", oldID, "customer "+customerID+" missing in destination account")
				return nil
			}
			return fmt.Errorf("failed to look up customer %s: %w", customerID, err)
		}

		return m.migrateSubscription(ctx, &st, oldID, opts)
	})
	return st, err
}

func (m *Migrator) migrateSubscription(ctx context.Context, st *Stats, oldID string, opts SubscriptionOptions) error {
	expanded, err := m.Old.GetSubscription(ctx, oldID)
	if err != nil {
		m.failed(st, "subscription", oldID, fmt.Errorf("failed to expand subscription: %w", err))
		return nil
	}

	if err := m.cloneInlineItems(ctx, expanded, opts.Prices, opts.InlineProducts, opts.InlinePrices); err != nil {
		if isRecordFailure(err) {
			m.failed(st, "subscription", oldID, err)
			return nil
		}
		return err
	}

	couponID, err := m.reconcileDiscount(ctx, expanded, opts.Coupons, opts.ZeroDuration)
	if err != nil {
		var missing *idmap.MissingMappingError
		if errors.As(err, &missing) {
			m.failed(st, "subscription", oldID, err)
			return nil
		}
		return err
	}

	resolvePrice := func(oldPriceID string) (string, error) {
		if newID, ok := opts.Prices.Get(oldPriceID); ok {
			return newID, nil
		}
		return opts.InlinePrices.Require(oldPriceID)
	}
	params, err := sanitize.SubscriptionParams(expanded, resolvePrice, opts.AutomaticTax)
	if err != nil {
		m.failed(st, "subscription", oldID, err)
		return nil
	}
	if couponID != "" {
		params["coupon"] = couponID
	}

	created, err := m.New.CreateSubscription(ctx, params)
	if err != nil && opts.AutomaticTax && stripeapi.IsTaxLocationInvalid(err) {
		// The destination account cannot compute tax for this customer's
		// location; retry once without automatic tax for this customer only.
		m.log().Warn("disabling automatic tax", "subscription", oldID, "customer", expanded.ID("customer"))
		params["automatic_tax"] = map[string]any{"enabled": false}
		created, err = m.New.CreateSubscription(ctx, params)
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription for %s: %w", oldID, err)
	}
	newID := created.String("id")

	if err := opts.Subscriptions.Record(oldID, newID); err != nil {
		return err
	}
	m.migrated(st, "subscription", oldID, newID)

	// Soft decommission: mark the old subscription and let it run out its
	// paid period instead of cutting service mid-window.
	marker := stripeapi.Record{"metadata": map[string]any{MarkerDestinationID: newID}}
	if _, err := m.Old.UpdateSubscription(ctx, oldID, marker); err != nil {
		return fmt.Errorf("failed to mark subscription %s as migrated: %w", oldID, err)
	}
	if _, err := m.Old.UpdateSubscription(ctx, oldID, stripeapi.Record{"cancel_at_period_end": true}); err != nil {
		return fmt.Errorf("failed to schedule cancellation of %s: %w", oldID, err)
	}
	return nil
}

// reconcileDiscount returns the coupon id the migrated subscription should
// carry, or "" when there is no discount to carry over.
func (m *Migrator) reconcileDiscount(ctx context.Context, expanded stripeapi.Record, coupons *idmap.Map, policy discount.ZeroDurationPolicy) (string, error) {
	d := expanded.Map("discount")
	if d == nil {
		return "", nil
	}
	coupon := d.Map("coupon")
	if coupon == nil {
		return "", nil
	}

	res := discount.Reconcile(coupon, time.Unix(d.Int64("start"), 0), m.now(), policy)
	switch {
	case res.Drop:
		return "", nil
	case res.UseOriginal:
		return coupons.Require(res.CouponID)
	default:
		return discount.EnsureCustomCoupon(ctx, m.New, coupon, res)
	}
}

// recordFailureError wraps failures that are fatal to the current record but
// not to the run.
type recordFailureError struct{ err error }

func (e *recordFailureError) Error() string { return e.err.Error() }
func (e *recordFailureError) Unwrap() error { return e.err }

func recordFailure(err error) error { return &recordFailureError{err: err} }

func isRecordFailure(err error) bool {
	var rf *recordFailureError
	return errors.As(err, &rf)
}
