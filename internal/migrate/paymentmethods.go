package migrate

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// DefaultPaymentMethods walks the new account's customers and, for each one
// lacking a default payment method, promotes the first card on file.
// Customers with no cards are logged and left unchanged.
func (m *Migrator) DefaultPaymentMethods(ctx context.Context) (Stats, error) {
	var st Stats
	err := m.New.ForEachCustomer(ctx, func(customer stripeapi.Record) error {
		st.Total++
		customerID := customer.String("id")

		if settings := customer.Map("invoice_settings"); settings != nil && settings.ID("default_payment_method") != "" {
			m.skipped(&st, "payment_method", customerID, "default already set")
			return nil
		}

		methods, err := m.New.ListPaymentMethods(ctx, customerID, string(stripe.PaymentMethodTypeCard))
		if err != nil {
			return fmt.Errorf("failed to list payment methods for %s: %w", customerID, err)
		}
		if len(methods) == 0 {
			m.skipped(&st, "payment_method", customerID, "no card payment method")
			return nil
		}

		methodID := methods[0].String("id")
		params := stripeapi.Record{
			"invoice_settings": map[string]any{"default_payment_method": methodID},
		}
		if _, err := m.New.UpdateCustomer(ctx, customerID, params); err != nil {
			return fmt.Errorf("failed to set default payment method for %s: %w", customerID, err)
		}
		m.migrated(&st, "payment_method", customerID, methodID)
		return nil
	})
	return st, err
}
