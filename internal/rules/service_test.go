package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	dbgen "github.com/ollan-health/checkout-api/internal/db/gen"
	"github.com/ollan-health/checkout-api/internal/pricing"
)

type fakeQuerier struct {
	dbgen.Querier

	codes      []dbgen.PromoCode
	areas      []dbgen.DeliveryArea
	locations  []dbgen.PickupLocation
	categories []string
	err        error

	storeReads int
}

func (f *fakeQuerier) ListActivePromoCodes(ctx context.Context) ([]dbgen.PromoCode, error) {
	f.storeReads++
	if f.err != nil {
		return nil, f.err
	}
	return f.codes, nil
}

func (f *fakeQuerier) ListDeliveryAreas(ctx context.Context) ([]dbgen.DeliveryArea, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.areas, nil
}

func (f *fakeQuerier) ListPickupLocations(ctx context.Context) ([]dbgen.PickupLocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

func (f *fakeQuerier) ListSupermarketCategories(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Cache{Client: client, TTL: time.Minute}
}

func TestLoadWithoutStoreReturnsDefaults(t *testing.T) {
	svc := &Service{}
	rules, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, pricing.DefaultRules().ExpressFee, rules.ExpressFee)
	require.True(t, rules.IsCampus("University of Ibadan"))
}

func TestLoadAssemblesRulesFromStore(t *testing.T) {
	q := &fakeQuerier{
		codes: []dbgen.PromoCode{
			{Code: "OLLAN10", Kind: dbgen.PromoKindCategoryDiscount, PercentBps: pgtype.Int4{Int32: 1500, Valid: true}},
			{Code: "DELIVERFREE", Kind: dbgen.PromoKindFreeDelivery},
		},
		areas: []dbgen.DeliveryArea{
			{Name: "University of Ibadan", Campus: true},
			{Name: "Bodija", Campus: false},
		},
		locations: []dbgen.PickupLocation{
			{AreaName: "University of Ibadan", Name: "Main Gate"},
		},
		categories: []string{"Groceries"},
	}
	svc := &Service{Q: q, Cache: newTestCache(t)}

	rules, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"OLLAN10"}, rules.CategoryCodes)
	require.Equal(t, []string{"DELIVERFREE"}, rules.FreeDeliveryCodes)
	require.Equal(t, int32(1500), rules.DiscountBps)
	require.True(t, rules.IsCampus("University of Ibadan"))
	require.False(t, rules.IsCampus("Bodija"))
	require.Equal(t, []string{"Main Gate"}, rules.PickupLocations["University of Ibadan"])
	require.Equal(t, []string{"Groceries"}, rules.SupermarketCategories)

	// Tariffs still come from the defaults, not the store.
	require.Equal(t, pricing.DefaultRules().ExpressFee, rules.ExpressFee)
}

func TestLoadServesSecondReadFromCache(t *testing.T) {
	q := &fakeQuerier{
		areas: []dbgen.DeliveryArea{{Name: "UCH", Campus: true}},
	}
	svc := &Service{Q: q, Cache: newTestCache(t)}

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, q.storeReads)

	rules, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, q.storeReads)
	require.True(t, rules.IsCampus("UCH"))
}

func TestLoadStoreFailureIsAnError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}
	svc := &Service{Q: q, Cache: newTestCache(t)}

	_, err := svc.Load(context.Background())
	require.Error(t, err)
}

func TestEmptyStoreListsKeepDefaults(t *testing.T) {
	svc := &Service{Q: &fakeQuerier{}, Cache: newTestCache(t)}

	rules, err := svc.Load(context.Background())
	require.NoError(t, err)
	defaults := pricing.DefaultRules()
	require.Equal(t, defaults.CampusAreas, rules.CampusAreas)
	require.Equal(t, defaults.CategoryCodes, rules.CategoryCodes)
	require.Equal(t, defaults.FreeDeliveryCodes, rules.FreeDeliveryCodes)
}

func TestRefreshRewritesCache(t *testing.T) {
	q := &fakeQuerier{areas: []dbgen.DeliveryArea{{Name: "UCH", Campus: true}}}
	cache := newTestCache(t)
	svc := &Service{Q: q, Cache: cache}

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	q.areas = append(q.areas, dbgen.DeliveryArea{Name: "Agbowo Annex", Campus: true})
	rules, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, rules.IsCampus("Agbowo Annex"))

	// The rewritten cache serves the new list without another store read.
	reads := q.storeReads
	cached, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, reads, q.storeReads)
	require.True(t, cached.IsCampus("Agbowo Annex"))
}

func TestInvalidateForcesStoreRead(t *testing.T) {
	q := &fakeQuerier{areas: []dbgen.DeliveryArea{{Name: "UCH", Campus: true}}}
	svc := &Service{Q: q, Cache: newTestCache(t)}

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, q.storeReads)
}
