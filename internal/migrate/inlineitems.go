package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

type inlineClone struct {
	oldProductID string
	newProductID string
	oldPriceID   string
	newPriceID   string
}

// cloneInlineItems creates product+price clones for every subscription item
// whose price is not in the shared catalog. The clones form one migration
// unit: if any item fails, the clones already created for this subscription
// are rolled back and a record-level failure is returned. Mappings are
// persisted only once the whole unit has succeeded, so rolled-back clones
// never leave entries behind.
func (m *Migrator) cloneInlineItems(ctx context.Context, expanded stripeapi.Record, catalog, inlineProducts, inlinePrices *idmap.Map) error {
	subID := expanded.String("id")
	unit := &Unit{}
	var clones []inlineClone

	for _, item := range expanded.Map("items").Data() {
		price := item.Map("price")
		if price == nil {
			return recordFailure(fmt.Errorf("subscription %s: item %s has no expanded price", subID, item.String("id")))
		}
		oldPriceID := price.String("id")
		if catalog.Has(oldPriceID) || inlinePrices.Has(oldPriceID) {
			continue
		}

		clone, err := m.cloneItemPrice(ctx, unit, price)
		if err != nil {
			err = fmt.Errorf("subscription %s: %w", subID, err)
			err = unit.Rollback(ctx, m.New, err)
			var rf *RollbackFailure
			if errors.As(err, &rf) {
				m.log().Error("rollback incomplete, manual reconciliation required",
					"subscription", subID, "error", rf)
			}
			return recordFailure(err)
		}
		clones = append(clones, clone)
	}

	for _, c := range clones {
		if err := inlineProducts.Record(c.oldProductID, c.newProductID); err != nil {
			return err
		}
		if err := inlinePrices.Record(c.oldPriceID, c.newPriceID); err != nil {
			return err
		}
	}
	return nil
}

// cloneItemPrice creates the product and price clones for one inline price.
// Created objects are tracked on the unit before anything that can fail
// next, so a later failure can undo them.
func (m *Migrator) cloneItemPrice(ctx context.Context, unit *Unit, price stripeapi.Record) (inlineClone, error) {
	oldPriceID := price.String("id")
	product := price.Map("product")
	if product == nil {
		return inlineClone{}, fmt.Errorf("price %s is not in the catalog and its product is not expanded", oldPriceID)
	}
	if product.Bool("deleted") {
		return inlineClone{}, fmt.Errorf("price %s belongs to deleted product %s", oldPriceID, product.String("id"))
	}
	recurring := price.Map("recurring")
	if recurring == nil {
		return inlineClone{}, fmt.Errorf("inline price %s is not recurring", oldPriceID)
	}

	productParams := stripeapi.Record{"name": product.String("name")}
	if desc := product.String("description"); desc != "" {
		productParams["description"] = desc
	}
	newProduct, err := m.New.CreateProduct(ctx, productParams)
	if err != nil {
		return inlineClone{}, fmt.Errorf("failed to clone product %s: %w", product.String("id"), err)
	}
	unit.TrackProduct(newProduct.String("id"))

	recurringParams := map[string]any{
		"interval":       recurring.String("interval"),
		"interval_count": recurring.Int64("interval_count"),
	}
	if v := recurring.String("aggregate_usage"); v != "" {
		recurringParams["aggregate_usage"] = v
	}
	if v := recurring.String("usage_type"); v != "" {
		recurringParams["usage_type"] = v
	}
	priceParams := stripeapi.Record{
		"product":   newProduct.String("id"),
		"currency":  price.String("currency"),
		"recurring": recurringParams,
	}
	if amount, ok := price["unit_amount"]; ok && amount != nil {
		priceParams["unit_amount"] = amount
	}
	newPrice, err := m.New.CreatePrice(ctx, priceParams)
	if err != nil {
		return inlineClone{}, fmt.Errorf("failed to clone price %s: %w", oldPriceID, err)
	}
	unit.TrackPrice(newPrice.String("id"))

	return inlineClone{
		oldProductID: product.String("id"),
		newProductID: newProduct.String("id"),
		oldPriceID:   oldPriceID,
		newPriceID:   newPrice.String("id"),
	}, nil
}

// InlineItems clones inline products and prices for every subscription
// without creating the subscriptions themselves. It exists to pre-seed the
// inline id maps before a subscription run, or to repair them after one.
func (m *Migrator) InlineItems(ctx context.Context, catalog, inlineProducts, inlinePrices *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachSubscription(ctx, func(sub stripeapi.Record) error {
		st.Total++
		oldID := sub.String("id")

		customerID := sub.ID("customer")
		if _, err := m.New.GetCustomer(ctx, customerID); err != nil {
			if stripeapi.IsNotFound(err) {
				m.skipped(&st, "subscription_items", oldID, "customer "+customerID+" missing in destination account")
				return nil
			}
			return fmt.Errorf("failed to look up customer %s: %w", customerID, err)
		}

		expanded, err := m.Old.GetSubscription(ctx, oldID)
		if err != nil {
			m.failed(&st, "subscription_items", oldID, fmt.Errorf("failed to expand subscription: %w", err))
			return nil
		}

		before := inlinePrices.Len()
		if err := m.cloneInlineItems(ctx, expanded, catalog, inlineProducts, inlinePrices); err != nil {
			if isRecordFailure(err) {
				m.failed(&st, "subscription_items", oldID, err)
				return nil
			}
			return err
		}
		if inlinePrices.Len() == before {
			m.skipped(&st, "subscription_items", oldID, "no inline prices")
			return nil
		}
		m.migrated(&st, "subscription_items", oldID, "")
		return nil
	})
	return st, err
}
