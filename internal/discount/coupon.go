package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// ZeroDurationPolicy decides what happens to a repeating discount whose
// remaining duration reconciles to exactly zero. The upstream behavior was
// inconsistent, so the choice is an explicit parameter rather than a guess.
type ZeroDurationPolicy string

const (
	// DropExpired drops the discount from the migrated object entirely.
	DropExpired ZeroDurationPolicy = "drop"
	// AttachOnce attaches a one-off clone so the discount stays visible on
	// the new account for audit purposes.
	AttachOnce ZeroDurationPolicy = "attach"
)

// ParsePolicy validates a policy flag value.
func ParsePolicy(s string) (ZeroDurationPolicy, error) {
	switch ZeroDurationPolicy(s) {
	case DropExpired, AttachOnce:
		return ZeroDurationPolicy(s), nil
	}
	return "", fmt.Errorf("invalid zero-duration policy %q (want %q or %q)", s, DropExpired, AttachOnce)
}

// CustomCouponID is the deterministic id of a coupon clone with a reduced
// duration. Two discounts on the same original coupon with equal remaining
// months resolve to the same id, which is what makes repeated runs converge
// on one clone instead of minting duplicates.
func CustomCouponID(originalID string, remainingMonths int64) string {
	return fmt.Sprintf("%s-T-%d", originalID, remainingMonths)
}

// Resolution is the outcome of reconciling one discount.
type Resolution struct {
	// Drop means the discount should not be carried over at all.
	Drop bool
	// UseOriginal means the unmodified original coupon applies; CouponID is
	// the old-account coupon id, to be resolved through the coupon id map.
	UseOriginal bool
	// Otherwise a custom clone is needed: CouponID is its deterministic id
	// and RemainingMonths its reduced duration (0 under AttachOnce).
	CouponID        string
	RemainingMonths int64
}

// Reconcile decides which coupon a migrated discount should carry. coupon is
// the discount's expanded coupon record from the old account; start is when
// the discount began.
func Reconcile(coupon stripeapi.Record, start, now time.Time, policy ZeroDurationPolicy) Resolution {
	originalID := coupon.String("id")
	if coupon.String("duration") != string(stripe.CouponDurationRepeating) {
		return Resolution{UseOriginal: true, CouponID: originalID}
	}

	total := coupon.Int64("duration_in_months")
	remaining := RemainingMonths(start, total, now)
	switch {
	case remaining == total:
		return Resolution{UseOriginal: true, CouponID: originalID}
	case remaining == 0:
		if policy == DropExpired {
			return Resolution{Drop: true}
		}
		return Resolution{CouponID: CustomCouponID(originalID, 0), RemainingMonths: 0}
	default:
		return Resolution{CouponID: CustomCouponID(originalID, remaining), RemainingMonths: remaining}
	}
}

// CouponCreator is the one remote operation custom-coupon creation needs.
type CouponCreator interface {
	CreateCoupon(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
}

// EnsureCustomCoupon creates the reduced-duration clone in the new account.
// Creation is idempotent by construction: the deterministic id makes a
// duplicate create fail with an already-exists rejection, which is success.
func EnsureCustomCoupon(ctx context.Context, api CouponCreator, original stripeapi.Record, res Resolution) (string, error) {
	payload, err := sanitize.Sanitize(sanitize.Coupon, original, nil)
	if err != nil {
		return "", err
	}
	payload["id"] = res.CouponID
	if res.RemainingMonths > 0 {
		payload["duration"] = string(stripe.CouponDurationRepeating)
		payload["duration_in_months"] = res.RemainingMonths
	} else {
		// A zero-month repeating coupon is not creatable; the audit clone
		// applies once instead.
		payload["duration"] = string(stripe.CouponDurationOnce)
		delete(payload, "duration_in_months")
	}

	if _, err := api.CreateCoupon(ctx, payload); err != nil {
		if stripeapi.IsAlreadyExists(err) {
			return res.CouponID, nil
		}
		return "", fmt.Errorf("failed to create custom coupon %s: %w", res.CouponID, err)
	}
	return res.CouponID, nil
}
