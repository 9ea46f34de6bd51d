package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// RollbackFailure means best-effort cleanup of a migration unit itself
// failed: the unit is left partially created and must be reconciled by hand.
// The original failure is still the reported cause.
type RollbackFailure struct {
	Cause error
	Errs  []error
}

func (e *RollbackFailure) Error() string {
	return fmt.Sprintf("rollback left %d object(s) behind after: %v (cleanup: %v)", len(e.Errs), e.Cause, errors.Join(e.Errs...))
}

func (e *RollbackFailure) Unwrap() error { return e.Cause }

// Unit tracks the new-account objects created as one atomic migration step
// (one subscription's inline product/price clones). Either every member
// persists or Rollback undoes them all before the unit reports failure.
type Unit struct {
	products []string
	prices   []string
}

// TrackProduct registers a created product for potential rollback.
func (u *Unit) TrackProduct(id string) { u.products = append(u.products, id) }

// TrackPrice registers a created price for potential rollback.
func (u *Unit) TrackPrice(id string) { u.prices = append(u.prices, id) }

// Empty reports whether the unit created anything.
func (u *Unit) Empty() bool { return len(u.products) == 0 && len(u.prices) == 0 }

// Rollback undoes the unit's creations in the new account: products are
// deleted, prices are deactivated (the remote does not allow deleting
// prices). cause is the failure that triggered the rollback; it is returned
// unchanged when cleanup succeeds, or wrapped in a RollbackFailure when
// cleanup itself fails.
func (u *Unit) Rollback(ctx context.Context, api API, cause error) error {
	var cleanup []error
	for _, id := range u.products {
		if err := api.DeleteProduct(ctx, id); err != nil {
			cleanup = append(cleanup, fmt.Errorf("delete product %s: %w", id, err))
		}
	}
	for _, id := range u.prices {
		if _, err := api.UpdatePrice(ctx, id, stripeapi.Record{"active": false}); err != nil {
			cleanup = append(cleanup, fmt.Errorf("deactivate price %s: %w", id, err))
		}
	}
	if len(cleanup) > 0 {
		return &RollbackFailure{Cause: cause, Errs: cleanup}
	}
	return cause
}
