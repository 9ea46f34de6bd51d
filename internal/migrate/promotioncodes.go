package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// PromotionCodes copies promotion codes, resolving each code's coupon
// through the coupon id map. Validation rejections from the new account
// (code collisions, inactive coupons) are record-level: the code is logged
// and skipped. Anything unrecognized aborts the run.
func (m *Migrator) PromotionCodes(ctx context.Context, coupons, codes *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachPromotionCode(ctx, func(old stripeapi.Record) error {
		st.Total++
		oldID := old.String("id")

		if newID, ok := codes.Get(oldID); ok {
			m.skipped(&st, "promotion_code", oldID, "already migrated as "+newID)
			return nil
		}

		newCouponID, err := coupons.Require(old.ID("coupon"))
		if err != nil {
			var missing *idmap.MissingMappingError
			if errors.As(err, &missing) {
				m.failed(&st, "promotion_code", oldID, err)
				return nil
			}
			return err
		}

		payload, err := sanitize.Sanitize(sanitize.PromotionCode, old, map[string]string{"coupon": newCouponID})
		if err != nil {
			m.failed(&st, "promotion_code", oldID, err)
			return nil
		}

		created, err := m.New.CreatePromotionCode(ctx, payload)
		if err != nil {
			if stripeapi.IsValidation(err) {
				m.skipped(&st, "promotion_code", oldID, "rejected by destination account: "+err.Error())
				return nil
			}
			return fmt.Errorf("failed to create promotion code for %s: %w", oldID, err)
		}
		if err := codes.Record(oldID, created.String("id")); err != nil {
			return err
		}
		m.migrated(&st, "promotion_code", oldID, created.String("id"))
		return nil
	})
	return st, err
}
