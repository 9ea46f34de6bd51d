package migrate

import (
	"context"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// CancelAllSubscriptions schedules every old-account subscription for
// cancellation at period end. Part of the decommission phase once a
// migration window closes.
func (m *Migrator) CancelAllSubscriptions(ctx context.Context) (Stats, error) {
	var st Stats
	err := m.Old.ForEachSubscription(ctx, func(sub stripeapi.Record) error {
		st.Total++
		oldID := sub.String("id")
		if sub.Bool("cancel_at_period_end") {
			m.skipped(&st, "subscription", oldID, "already scheduled for cancellation")
			return nil
		}
		if _, err := m.Old.UpdateSubscription(ctx, oldID, stripeapi.Record{"cancel_at_period_end": true}); err != nil {
			return fmt.Errorf("failed to schedule cancellation of %s: %w", oldID, err)
		}
		m.migrated(&st, "subscription", oldID, "")
		return nil
	})
	return st, err
}

// PauseAllSubscriptions voids payment collection on every old-account
// subscription, keeping them alive but uncharged during a migration window.
func (m *Migrator) PauseAllSubscriptions(ctx context.Context) (Stats, error) {
	var st Stats
	err := m.Old.ForEachSubscription(ctx, func(sub stripeapi.Record) error {
		st.Total++
		oldID := sub.String("id")
		params := stripeapi.Record{
			"pause_collection": map[string]any{"behavior": "void"},
		}
		if _, err := m.Old.UpdateSubscription(ctx, oldID, params); err != nil {
			return fmt.Errorf("failed to pause collection on %s: %w", oldID, err)
		}
		m.migrated(&st, "subscription", oldID, "")
		return nil
	})
	return st, err
}
