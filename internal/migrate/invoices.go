package migrate

import (
	"context"
	"fmt"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Invoices recreates a customer's settled invoices in the new account as
// non-auto-advancing drafts, copies the lines as independent invoice items,
// finalizes, and marks them paid out of band. customerID filters the old
// account's invoice list; empty means all customers.
//
// A failure after the draft is created leaves the partial invoice in place
// (drafts are inert) and fails the record; nothing else is rolled back. The
// old-side marker is only written once the new invoice is fully confirmed,
// and the destination account is additionally searched for a source marker
// before creating, so a crash between creation and marker-write cannot mint
// a duplicate on retry.
func (m *Migrator) Invoices(ctx context.Context, customerID string, invoices *idmap.Map) (Stats, error) {
	var st Stats
	err := m.Old.ForEachInvoice(ctx, customerID, func(old stripeapi.Record) error {
		st.Total++
		oldID := old.String("id")

		if dest := old.Metadata().String(MarkerDestinationID); dest != "" {
			m.skipped(&st, "invoice", oldID, "already migrated as "+dest)
			return nil
		}
		if newID, ok := invoices.Get(oldID); ok {
			m.skipped(&st, "invoice", oldID, "already migrated as "+newID)
			return nil
		}

		custID := old.ID("customer")
		if _, err := m.New.GetCustomer(ctx, custID); err != nil {
			if stripeapi.IsNotFound(err) {
				m.skipped(&st, "invoice", oldID, "customer "+custID+" missing in destination account")
				return nil
			}
			return fmt.Errorf("failed to look up customer %s: %w", custID, err)
		}

		// Destination-side duplicate check: a prior run may have created the
		// invoice and crashed before writing the old-side marker.
		query := fmt.Sprintf("metadata['%s']:'%s'", MarkerSourceID, oldID)
		hits, err := m.New.SearchInvoices(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to search destination invoices for %s: %w", oldID, err)
		}
		if len(hits) > 0 {
			newID := hits[0].String("id")
			if err := m.confirmInvoice(ctx, invoices, old, newID); err != nil {
				return err
			}
			m.skipped(&st, "invoice", oldID, "found in destination account as "+newID)
			return nil
		}

		newID, err := m.copyInvoice(ctx, old, custID)
		if err != nil {
			if isRecordFailure(err) {
				m.failed(&st, "invoice", oldID, err)
				return nil
			}
			return err
		}
		if err := m.confirmInvoice(ctx, invoices, old, newID); err != nil {
			return err
		}
		m.migrated(&st, "invoice", oldID, newID)
		return nil
	})
	return st, err
}

// copyInvoice creates the draft, the items, finalizes and pays out of band.
// All failures are record-level: the draft, if any, stays behind and is
// reported against its id.
func (m *Migrator) copyInvoice(ctx context.Context, old stripeapi.Record, customerID string) (string, error) {
	oldID := old.String("id")

	params := sanitize.InvoiceParams(old)
	params.Metadata()[MarkerSourceID] = oldID

	created, err := m.New.CreateInvoice(ctx, params)
	if err != nil {
		return "", recordFailure(fmt.Errorf("failed to create invoice for %s: %w", oldID, err))
	}
	newID := created.String("id")

	for _, line := range old.Map("lines").Data() {
		if _, err := m.New.CreateInvoiceItem(ctx, sanitize.InvoiceItemParams(line, newID, customerID)); err != nil {
			return "", recordFailure(fmt.Errorf("failed to add line to invoice %s (partial draft left in place): %w", newID, err))
		}
	}
	if _, err := m.New.FinalizeInvoice(ctx, newID); err != nil {
		return "", recordFailure(fmt.Errorf("failed to finalize invoice %s: %w", newID, err))
	}
	if _, err := m.New.PayInvoiceOutOfBand(ctx, newID); err != nil {
		return "", recordFailure(fmt.Errorf("failed to mark invoice %s paid out of band: %w", newID, err))
	}
	return newID, nil
}

// confirmInvoice records the id mapping and writes the old-side marker, in
// that order: the durable mapping is the checkpoint, the marker the rerun
// fast path.
func (m *Migrator) confirmInvoice(ctx context.Context, invoices *idmap.Map, old stripeapi.Record, newID string) error {
	oldID := old.String("id")
	if err := invoices.Record(oldID, newID); err != nil {
		return err
	}
	marker := stripeapi.Record{"metadata": map[string]any{MarkerDestinationID: newID}}
	if _, err := m.Old.UpdateInvoice(ctx, oldID, marker); err != nil {
		// The mapping already checkpoints this invoice; losing the marker
		// only costs a destination search on the next run.
		m.log().Warn("failed to mark old invoice as migrated", "old_id", oldID, "new_id", newID, "error", err)
	}
	return nil
}
