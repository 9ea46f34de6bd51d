package migrate

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

func notFoundErr() error {
	return &stripeapi.Error{
		Status:  404,
		Type:    string(stripe.ErrorTypeInvalidRequest),
		Code:    string(stripe.ErrorCodeResourceMissing),
		Message: "no such resource",
	}
}

func alreadyExistsErr() error {
	return &stripeapi.Error{
		Status:  400,
		Type:    string(stripe.ErrorTypeInvalidRequest),
		Code:    string(stripe.ErrorCodeResourceAlreadyExists),
		Message: "resource already exists",
	}
}

func taxLocationErr() error {
	return &stripeapi.Error{
		Status:  400,
		Type:    string(stripe.ErrorTypeInvalidRequest),
		Code:    string(stripe.ErrorCodeCustomerTaxLocationInvalid),
		Message: "customer tax location invalid",
	}
}

// fakeAPI is a scripted in-memory account. List data is served from slices;
// every mutating call is appended to calls and its params captured. Hooks
// inject failures per operation.
type fakeAPI struct {
	products      []stripeapi.Record
	prices        []stripeapi.Record
	coupons       []stripeapi.Record
	codes         []stripeapi.Record
	subscriptions []stripeapi.Record
	customers     []stripeapi.Record
	invoices      []stripeapi.Record
	searchHits    []stripeapi.Record
	methods       map[string][]stripeapi.Record

	calls    []string
	captured map[string][]stripeapi.Record
	updates  map[string][]stripeapi.Record // keyed by "kind:id"
	deleted  []string

	createProductHook      func(params stripeapi.Record) error
	createPriceHook        func(params stripeapi.Record) error
	createCouponHook       func(params stripeapi.Record) error
	createCodeHook         func(params stripeapi.Record) error
	createSubscriptionHook func(params stripeapi.Record) error
	createInvoiceHook      func(params stripeapi.Record) error
	createItemHook         func(params stripeapi.Record) error
	finalizeHook           func(id string) error
	payHook                func(id string) error

	nextID map[string]int
}

var _ API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		methods:  map[string][]stripeapi.Record{},
		captured: map[string][]stripeapi.Record{},
		updates:  map[string][]stripeapi.Record{},
		nextID:   map[string]int{},
	}
}

func (f *fakeAPI) record(call string, params stripeapi.Record) {
	f.calls = append(f.calls, call)
	if params != nil {
		// Snapshot: callers may mutate params between calls (tax retry).
		f.captured[call] = append(f.captured[call], params.Clone())
	}
}

func (f *fakeAPI) genID(prefix string) string {
	f.nextID[prefix]++
	return fmt.Sprintf("%s_new_%d", prefix, f.nextID[prefix])
}

func (f *fakeAPI) callCount(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func forEach(records []stripeapi.Record, fn func(stripeapi.Record) error) error {
	for _, r := range records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func find(records []stripeapi.Record, id string) (stripeapi.Record, error) {
	for _, r := range records {
		if r.String("id") == id {
			return r, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakeAPI) ForEachProduct(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.products, fn)
}

func (f *fakeAPI) GetProduct(ctx context.Context, id string) (stripeapi.Record, error) {
	return find(f.products, id)
}

func (f *fakeAPI) CreateProduct(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreateProduct", params)
	if f.createProductHook != nil {
		if err := f.createProductHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("prod")}, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("UpdateProduct", params)
	f.updates["product:"+id] = append(f.updates["product:"+id], params)
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id string) error {
	f.record("DeleteProduct", nil)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ForEachPrice(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.prices, fn)
}

func (f *fakeAPI) CreatePrice(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreatePrice", params)
	if f.createPriceHook != nil {
		if err := f.createPriceHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("price")}, nil
}

func (f *fakeAPI) UpdatePrice(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("UpdatePrice", params)
	f.updates["price:"+id] = append(f.updates["price:"+id], params)
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) ForEachCoupon(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.coupons, fn)
}

func (f *fakeAPI) CreateCoupon(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreateCoupon", params)
	if f.createCouponHook != nil {
		if err := f.createCouponHook(params); err != nil {
			return nil, err
		}
	}
	id := params.String("id")
	if id == "" {
		id = f.genID("coupon")
	}
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) ForEachPromotionCode(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.codes, fn)
}

func (f *fakeAPI) CreatePromotionCode(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreatePromotionCode", params)
	if f.createCodeHook != nil {
		if err := f.createCodeHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("promo")}, nil
}

func (f *fakeAPI) ForEachSubscription(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.subscriptions, fn)
}

func (f *fakeAPI) GetSubscription(ctx context.Context, id string) (stripeapi.Record, error) {
	f.record("GetSubscription", nil)
	return find(f.subscriptions, id)
}

func (f *fakeAPI) CreateSubscription(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreateSubscription", params)
	if f.createSubscriptionHook != nil {
		if err := f.createSubscriptionHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("sub")}, nil
}

func (f *fakeAPI) UpdateSubscription(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("UpdateSubscription", params)
	f.updates["subscription:"+id] = append(f.updates["subscription:"+id], params)
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) ForEachCustomer(ctx context.Context, fn func(stripeapi.Record) error) error {
	return forEach(f.customers, fn)
}

func (f *fakeAPI) GetCustomer(ctx context.Context, id string) (stripeapi.Record, error) {
	f.record("GetCustomer", nil)
	return find(f.customers, id)
}

func (f *fakeAPI) UpdateCustomer(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("UpdateCustomer", params)
	f.updates["customer:"+id] = append(f.updates["customer:"+id], params)
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]stripeapi.Record, error) {
	f.record("ListPaymentMethods", nil)
	return f.methods[customerID], nil
}

func (f *fakeAPI) ForEachInvoice(ctx context.Context, customerID string, fn func(stripeapi.Record) error) error {
	return forEach(f.invoices, fn)
}

func (f *fakeAPI) CreateInvoice(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreateInvoice", params)
	if f.createInvoiceHook != nil {
		if err := f.createInvoiceHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("in")}, nil
}

func (f *fakeAPI) UpdateInvoice(ctx context.Context, id string, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("UpdateInvoice", params)
	f.updates["invoice:"+id] = append(f.updates["invoice:"+id], params)
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) FinalizeInvoice(ctx context.Context, id string) (stripeapi.Record, error) {
	f.record("FinalizeInvoice", nil)
	if f.finalizeHook != nil {
		if err := f.finalizeHook(id); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) PayInvoiceOutOfBand(ctx context.Context, id string) (stripeapi.Record, error) {
	f.record("PayInvoiceOutOfBand", nil)
	if f.payHook != nil {
		if err := f.payHook(id); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": id}, nil
}

func (f *fakeAPI) SearchInvoices(ctx context.Context, query string) ([]stripeapi.Record, error) {
	f.record("SearchInvoices", nil)
	return f.searchHits, nil
}

func (f *fakeAPI) CreateInvoiceItem(ctx context.Context, params stripeapi.Record) (stripeapi.Record, error) {
	f.record("CreateInvoiceItem", params)
	if f.createItemHook != nil {
		if err := f.createItemHook(params); err != nil {
			return nil, err
		}
	}
	return stripeapi.Record{"id": f.genID("ii")}, nil
}
