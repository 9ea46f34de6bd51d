// Package migrate drives the cross-account resource migrators. Records are
// processed strictly sequentially in pagination order: one record's remote
// calls, including nested dependency creations and rollback, complete before
// the next record begins. The id-map write after each successful creation is
// the run's checkpoint, so an interrupted run resumes past everything it
// already migrated.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// Metadata keys written onto records as migration markers.
const (
	// MarkerDestinationID is written onto the OLD record after its copy is
	// confirmed created, naming the new-account id.
	MarkerDestinationID = "migration_destination_id"
	// MarkerSourceID is written onto the NEW record at creation, naming the
	// old-account id it was copied from. It is what makes destination-side
	// duplicate detection possible.
	MarkerSourceID = "migration_source_id"
)

// API is the remote payment API boundary. Both accounts are values of this
// interface; *stripeapi.Client is the production implementation.
type API interface {
	ForEachProduct(ctx context.Context, fn func(stripeapi.Record) error) error
	GetProduct(ctx context.Context, id string) (stripeapi.Record, error)
	CreateProduct(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
	UpdateProduct(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error)
	DeleteProduct(ctx context.Context, id string) error

	ForEachPrice(ctx context.Context, fn func(stripeapi.Record) error) error
	CreatePrice(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
	UpdatePrice(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error)

	ForEachCoupon(ctx context.Context, fn func(stripeapi.Record) error) error
	CreateCoupon(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)

	ForEachPromotionCode(ctx context.Context, fn func(stripeapi.Record) error) error
	CreatePromotionCode(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)

	ForEachSubscription(ctx context.Context, fn func(stripeapi.Record) error) error
	GetSubscription(ctx context.Context, id string) (stripeapi.Record, error)
	CreateSubscription(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
	UpdateSubscription(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error)

	ForEachCustomer(ctx context.Context, fn func(stripeapi.Record) error) error
	GetCustomer(ctx context.Context, id string) (stripeapi.Record, error)
	UpdateCustomer(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error)
	ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]stripeapi.Record, error)

	ForEachInvoice(ctx context.Context, customerID string, fn func(stripeapi.Record) error) error
	CreateInvoice(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
	UpdateInvoice(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error)
	FinalizeInvoice(ctx context.Context, id string) (stripeapi.Record, error)
	PayInvoiceOutOfBand(ctx context.Context, id string) (stripeapi.Record, error)
	SearchInvoices(ctx context.Context, query string) ([]stripeapi.Record, error)
	CreateInvoiceItem(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error)
}

// Recorder receives one row per processed record. *journal.Journal
// implements it; a nil Recorder disables journaling.
type Recorder interface {
	Record(kind, oldID, newID, outcome, detail string) error
}

// Stats is the per-run report every migrator returns.
type Stats struct {
	Total    int
	Migrated int
	Skipped  int
	Failed   int
}

func (s Stats) String() string {
	return fmt.Sprintf("total=%d migrated=%d skipped=%d failed=%d", s.Total, s.Migrated, s.Skipped, s.Failed)
}

// Migrator holds the collaborators shared by every resource migrator.
type Migrator struct {
	Old API
	New API

	Log     *slog.Logger
	Journal Recorder
	// Now is overridable for duration reconciliation tests.
	Now func() time.Time
}

func (m *Migrator) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Migrator) log() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

const (
	outcomeMigrated = "migrated"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
)

func (m *Migrator) migrated(st *Stats, kind, oldID, newID string) {
	st.Migrated++
	m.log().Info("migrated", "kind", kind, "old_id", oldID, "new_id", newID)
	m.journal(kind, oldID, newID, outcomeMigrated, "")
}

func (m *Migrator) skipped(st *Stats, kind, oldID, reason string) {
	st.Skipped++
	m.log().Info("skipped", "kind", kind, "old_id", oldID, "reason", reason)
	m.journal(kind, oldID, "", outcomeSkipped, reason)
}

func (m *Migrator) failed(st *Stats, kind, oldID string, err error) {
	st.Failed++
	m.log().Error("failed", "kind", kind, "old_id", oldID, "error", err)
	m.journal(kind, oldID, "", outcomeFailed, err.Error())
}

func (m *Migrator) journal(kind, oldID, newID, outcome, detail string) {
	if m.Journal == nil {
		return
	}
	if err := m.Journal.Record(kind, oldID, newID, outcome, detail); err != nil {
		m.log().Warn("journal write failed", "kind", kind, "old_id", oldID, "error", err)
	}
}
