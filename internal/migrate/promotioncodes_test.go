package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

func TestPromotionCodes(t *testing.T) {
	src := newFakeAPI()
	src.codes = []stripeapi.Record{
		{"id": "promo_a", "code": "WELCOME10", "coupon": map[string]any{"id": "SPRING24"}},
	}
	dst := newFakeAPI()
	m := newTestMigrator(t, src, dst)
	coupons := tempMap(t, idmap.Coupons)
	codes := tempMap(t, idmap.PromotionCodes)
	require.NoError(t, coupons.Record("SPRING24", "SPRING24"))

	st, err := m.PromotionCodes(context.Background(), coupons, codes)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Migrated: 1}, st)

	payload := dst.captured["CreatePromotionCode"][0]
	assert.Equal(t, "SPRING24", payload.String("coupon"))
	assert.Equal(t, "WELCOME10", payload.String("code"))
	assert.NotContains(t, payload, "id")
	assert.True(t, codes.Has("promo_a"))
}

func TestPromotionCodesUnmappedCouponFailsRecordOnly(t *testing.T) {
	src := newFakeAPI()
	src.codes = []stripeapi.Record{
		{"id": "promo_orphan", "coupon": "MISSING"},
	}
	dst := newFakeAPI()
	m := newTestMigrator(t, src, dst)
	coupons := tempMap(t, idmap.Coupons)
	codes := tempMap(t, idmap.PromotionCodes)

	st, err := m.PromotionCodes(context.Background(), coupons, codes)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Failed: 1}, st)
	assert.Equal(t, 0, dst.callCount("CreatePromotionCode"))
}

func TestPromotionCodesValidationRejectionSkips(t *testing.T) {
	src := newFakeAPI()
	src.codes = []stripeapi.Record{
		{"id": "promo_a", "code": "TAKEN", "coupon": "SPRING24"},
		{"id": "promo_b", "code": "FREE", "coupon": "SPRING24"},
	}
	dst := newFakeAPI()
	rejected := true
	dst.createCodeHook = func(params stripeapi.Record) error {
		if rejected {
			rejected = false
			return &stripeapi.Error{Status: 400, Type: "invalid_request_error", Code: "parameter_invalid_empty"}
		}
		return nil
	}
	m := newTestMigrator(t, src, dst)
	coupons := tempMap(t, idmap.Coupons)
	codes := tempMap(t, idmap.PromotionCodes)
	require.NoError(t, coupons.Record("SPRING24", "SPRING24"))

	st, err := m.PromotionCodes(context.Background(), coupons, codes)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Migrated: 1, Skipped: 1}, st)
	assert.False(t, codes.Has("promo_a"))
	assert.True(t, codes.Has("promo_b"))
}

func TestPromotionCodesUnknownErrorAborts(t *testing.T) {
	src := newFakeAPI()
	src.codes = []stripeapi.Record{
		{"id": "promo_a", "coupon": "SPRING24"},
	}
	dst := newFakeAPI()
	boom := errors.New("remote unavailable")
	dst.createCodeHook = func(params stripeapi.Record) error { return boom }
	m := newTestMigrator(t, src, dst)
	coupons := tempMap(t, idmap.Coupons)
	codes := tempMap(t, idmap.PromotionCodes)
	require.NoError(t, coupons.Record("SPRING24", "SPRING24"))

	_, err := m.PromotionCodes(context.Background(), coupons, codes)
	require.ErrorIs(t, err, boom)
}
