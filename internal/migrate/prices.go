package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Prices copies every catalog price, resolving each price's product through
// the product id map. When the old product named the price as its default,
// the default is propagated onto the new product as well.
func (m *Migrator) Prices(ctx context.Context, products, prices *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachPrice(ctx, func(old stripeapi.Record) error {
		st.Total++
		oldID := old.String("id")

		if newID, ok := prices.Get(oldID); ok {
			m.skipped(&st, "price", oldID, "already migrated as "+newID)
			return nil
		}

		oldProductID := old.ID("product")
		newProductID, err := products.Require(oldProductID)
		if err != nil {
			var missing *idmap.MissingMappingError
			if errors.As(err, &missing) {
				m.failed(&st, "price", oldID, err)
				return nil
			}
			return err
		}

		payload, err := sanitize.Sanitize(sanitize.Price, old, map[string]string{"product": newProductID})
		if err != nil {
			m.failed(&st, "price", oldID, err)
			return nil
		}

		created, err := m.New.CreatePrice(ctx, payload)
		if err != nil {
			return fmt.Errorf("failed to create price for %s: %w", oldID, err)
		}
		newID := created.String("id")
		if err := prices.Record(oldID, newID); err != nil {
			return err
		}
		m.migrated(&st, "price", oldID, newID)

		oldProduct, err := m.Old.GetProduct(ctx, oldProductID)
		if err != nil {
			return fmt.Errorf("failed to look up product %s: %w", oldProductID, err)
		}
		if oldProduct.ID("default_price") == oldID {
			if _, err := m.New.UpdateProduct(ctx, newProductID, stripeapi.Record{"default_price": newID}); err != nil {
				return fmt.Errorf("failed to set default price on %s: %w", newProductID, err)
			}
		}
		return nil
	})
	return st, err
}
