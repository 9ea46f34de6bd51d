package migrate

import (
	"context"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Products copies every product from the old account into the new one.
func (m *Migrator) Products(ctx context.Context, products *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachProduct(ctx, func(old stripeapi.Record) error {
		st.Total++
		oldID := old.String("id")

		if newID, ok := products.Get(oldID); ok {
			m.skipped(&st, "product", oldID, "already migrated as "+newID)
			return nil
		}

		payload, err := sanitize.Sanitize(sanitize.Product, old, nil)
		if err != nil {
			m.failed(&st, "product", oldID, err)
			return nil
		}

		created, err := m.New.CreateProduct(ctx, payload)
		if err != nil {
			return fmt.Errorf("failed to create product for %s: %w", oldID, err)
		}
		if err := products.Record(oldID, created.String("id")); err != nil {
			return err
		}
		m.migrated(&st, "product", oldID, created.String("id"))
		return nil
	})
	return st, err
}
