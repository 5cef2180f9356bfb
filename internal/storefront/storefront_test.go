package storefront

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/cache/filecache"
	"chizhikfront/internal/catalog"
)

const moscowID = "0c5b2444-70a0-4932-980c-b4dc0d3f02b5"

type fakeAPI struct {
	tree      []chizhik.Category
	treeErr   error
	treeCalls int

	cities []chizhik.City

	products     map[int64][]chizhik.Product
	productCalls int
	lastPage     int
	lastSearch   string
	next         bool

	offers    chizhik.Offers
	offersErr error
}

func (f *fakeAPI) SearchCities(ctx context.Context, search string, page int) ([]chizhik.City, error) {
	return f.cities, nil
}

func (f *fakeAPI) CategoryTree(ctx context.Context, cityID string) ([]chizhik.Category, error) {
	f.treeCalls++
	return f.tree, f.treeErr
}

func (f *fakeAPI) Products(ctx context.Context, cityID string, categoryID int64, page int, search string) (chizhik.ProductPage, error) {
	f.productCalls++
	f.lastPage = page
	f.lastSearch = search
	return chizhik.ProductPage{Items: f.products[categoryID], Next: f.next}, nil
}

func (f *fakeAPI) ActiveOffers(ctx context.Context) (chizhik.Offers, error) {
	return f.offers, f.offersErr
}

func (f *fakeAPI) ProductInfo(ctx context.Context, productID int64, cityID string) (chizhik.Product, error) {
	return chizhik.Product{ID: productID}, nil
}

func price(v float64) *float64 { return &v }

func promoTree() []chizhik.Category {
	return []chizhik.Category{
		{ID: 1, Depth: 1, Children: []chizhik.Category{
			{ID: 2, Depth: 2, Name: "Продукты"},
			{ID: 3, Depth: 2, Name: "18+", IsAdults: true},
		}},
		{ID: 149, Depth: 2, IsInout: true, Children: []chizhik.Category{
			{ID: 151, Slug: catalog.CurrentWeekSlug},
		}},
	}
}

func newService(t *testing.T, api *fakeAPI) *Service {
	t.Helper()
	return New(api, filecache.New(t.TempDir(), nil), nil, Options{})
}

func TestLoadTree_FillsDisplayCategoriesAndCaches(t *testing.T) {
	api := &fakeAPI{tree: promoTree()}
	svc := newService(t, api)
	ctx := context.Background()

	sess := NewSession(City{ID: moscowID, Name: "Москва"})
	require.NoError(t, svc.LoadTree(ctx, sess))

	require.Len(t, sess.DisplayCats, 1, "adults and inout excluded from tiles")
	assert.Equal(t, int64(2), sess.DisplayCats[0].ID)
	assert.Equal(t, 1, api.treeCalls)

	// второй сеанс того же города берёт дерево из кэша
	sess2 := NewSession(City{ID: moscowID})
	require.NoError(t, svc.LoadTree(ctx, sess2))
	assert.Equal(t, 1, api.treeCalls, "fresh cache entry must short-circuit the fetch")
	assert.Len(t, sess2.DisplayCats, 1)
}

func TestLoadTree_PropagatesFetchError(t *testing.T) {
	api := &fakeAPI{treeErr: errors.New("boom")}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	err := svc.LoadTree(context.Background(), sess)
	require.Error(t, err)
	assert.Nil(t, sess.Tree)
}

func TestLoadPromo_ShowsDiscountsWhenPresent(t *testing.T) {
	api := &fakeAPI{
		tree: promoTree(),
		products: map[int64][]chizhik.Product{
			151: {
				{ID: 10, Price: price(100), OldPrice: price(150)},
				{ID: 11, Price: price(100), OldPrice: nil},
			},
		},
	}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	list, err := svc.LoadPromo(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, int64(151), sess.PromoCatID, "current-week child wins")
	assert.True(t, list.Discounted)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(10), list.Items[0].ID)
	assert.Equal(t, ModePromo, sess.Mode)
}

func TestLoadPromo_FallsBackToRawPromoListing(t *testing.T) {
	api := &fakeAPI{
		tree: promoTree(),
		products: map[int64][]chizhik.Product{
			151: {
				{ID: 10, Price: price(100)},
				{ID: 11, Price: price(90)},
			},
		},
	}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	list, err := svc.LoadPromo(context.Background(), sess)
	require.NoError(t, err)

	assert.False(t, list.Discounted)
	assert.Len(t, list.Items, 2, "no real discounts: show the promo listing as is")
}

func TestLoadPromo_NoPromoSurfaceIsNotAnError(t *testing.T) {
	api := &fakeAPI{tree: []chizhik.Category{{ID: 1, Depth: 1}}}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	list, err := svc.LoadPromo(context.Background(), sess)
	require.NoError(t, err)

	assert.Empty(t, list.Items)
	assert.Zero(t, sess.PromoCatID)
	assert.Equal(t, 0, api.productCalls, "nothing to fetch")
}

func TestSelectCategoryAndLoadMore(t *testing.T) {
	api := &fakeAPI{
		tree: promoTree(),
		products: map[int64][]chizhik.Product{
			2: {{ID: 20, Price: price(50)}},
		},
		next: true,
	}
	svc := newService(t, api)
	ctx := context.Background()

	sess := NewSession(City{ID: moscowID})
	require.NoError(t, svc.LoadTree(ctx, sess))

	list, err := svc.SelectCategory(ctx, sess, 2)
	require.NoError(t, err)
	assert.Equal(t, ModeCategory, sess.Mode)
	assert.Equal(t, 1, list.Page)
	assert.True(t, list.HasMore)
	require.NotNil(t, sess.SelectedCat)
	assert.Equal(t, "Продукты", sess.SelectedCat.Name)

	list, err = svc.LoadMore(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 2, api.lastPage)
}

func TestSelectCategory_PrefersDiscountedSubset(t *testing.T) {
	api := &fakeAPI{
		tree: promoTree(),
		products: map[int64][]chizhik.Product{
			2: {
				{ID: 20, Price: price(100), OldPrice: price(150)},
				{ID: 21, Price: price(100)},
			},
		},
	}
	svc := newService(t, api)
	ctx := context.Background()

	sess := NewSession(City{ID: moscowID})
	require.NoError(t, svc.LoadTree(ctx, sess))

	list, err := svc.SelectCategory(ctx, sess, 2)
	require.NoError(t, err)

	assert.True(t, list.Discounted)
	require.Len(t, list.Items, 1, "a listing with real discounts shows only those")
	assert.Equal(t, int64(20), list.Items[0].ID)
}

func TestSearch_PrefersDiscountedSubset(t *testing.T) {
	api := &fakeAPI{products: map[int64][]chizhik.Product{
		0: {
			{ID: 30, Price: price(50)},
			{ID: 31, Price: price(40), OldPrice: price(60)},
		},
	}}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	list, err := svc.Search(context.Background(), sess, "молоко")
	require.NoError(t, err)

	assert.True(t, list.Discounted)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(31), list.Items[0].ID)
}

func TestLoadPage_FiltersBeforeTruncating(t *testing.T) {
	// скидочный товар в хвосте слишком большой страницы не должен
	// срезаться до фильтра
	api := &fakeAPI{products: map[int64][]chizhik.Product{
		2: {
			{ID: 40, Price: price(10)},
			{ID: 41, Price: price(10)},
			{ID: 42, Price: price(10), OldPrice: price(20)},
		},
	}}
	svc := New(api, filecache.New(t.TempDir(), nil), nil, Options{PageSize: 2})

	sess := NewSession(City{ID: moscowID})
	list, err := svc.SelectCategory(context.Background(), sess, 2)
	require.NoError(t, err)

	assert.True(t, list.Discounted)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(42), list.Items[0].ID)
}

func TestSearch_SetsModeAndQuery(t *testing.T) {
	api := &fakeAPI{products: map[int64][]chizhik.Product{0: {{ID: 30}}}}
	svc := newService(t, api)

	sess := NewSession(City{ID: moscowID})
	_, err := svc.Search(context.Background(), sess, "молоко")
	require.NoError(t, err)

	assert.Equal(t, ModeSearch, sess.Mode)
	assert.Equal(t, "молоко", api.lastSearch)
}

func TestSelectCity_RejectsInvalidUUID(t *testing.T) {
	svc := newService(t, &fakeAPI{})
	ctx := context.Background()

	sess := NewSession(City{ID: moscowID})
	err := svc.SelectCity(ctx, sess, City{ID: "not-a-uuid", Name: "X"})
	require.ErrorIs(t, err, ErrInvalidCity)

	// невалидный город не должен быть сохранён
	assert.Equal(t, svc.DefaultCity(), svc.LoadCity(ctx))
}

func TestSelectCity_PersistsAndResetsSession(t *testing.T) {
	api := &fakeAPI{tree: promoTree()}
	svc := newService(t, api)
	ctx := context.Background()

	sess := NewSession(City{ID: moscowID, Name: "Москва"})
	require.NoError(t, svc.LoadTree(ctx, sess))
	require.NotNil(t, sess.Tree)

	kazan := City{ID: "b1c2ad0f-692f-4f13-bb88-09240b1a67e5", Name: "Казань"}
	require.NoError(t, svc.SelectCity(ctx, sess, kazan))

	assert.Equal(t, kazan, sess.City)
	assert.Nil(t, sess.Tree, "city change drops everything derived from the old one")
	assert.Equal(t, ModePromo, sess.Mode)
	assert.Equal(t, kazan, svc.LoadCity(ctx))
}

func TestFindCity_PrefersExactNameMatch(t *testing.T) {
	api := &fakeAPI{cities: []chizhik.City{
		{FiasID: "11111111-1111-4111-8111-111111111111", Name: "Московский"},
		{FiasID: moscowID, Name: "Москва"},
	}}
	svc := newService(t, api)

	city, err := svc.FindCity(context.Background(), "москва")
	require.NoError(t, err)
	assert.Equal(t, moscowID, city.ID)
}

func TestActiveOffers_CachedAndBestEffort(t *testing.T) {
	api := &fakeAPI{offers: chizhik.Offers{Title: "Акции недели"}}
	svc := newService(t, api)
	ctx := context.Background()

	banner, ok := svc.ActiveOffers(ctx)
	require.True(t, ok)
	assert.Equal(t, "Акции недели", banner.Title)

	// следующий вызов обслуживается кэшем даже если бекенд лёг
	api.offersErr = errors.New("down")
	banner, ok = svc.ActiveOffers(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Акции недели", banner.Title)
}

func TestActiveOffers_FailureMeansNoBanner(t *testing.T) {
	api := &fakeAPI{offersErr: errors.New("down")}
	svc := newService(t, api)

	_, ok := svc.ActiveOffers(context.Background())
	assert.False(t, ok)
}

func TestValidCityID(t *testing.T) {
	assert.True(t, ValidCityID(moscowID))
	assert.False(t, ValidCityID(""))
	assert.False(t, ValidCityID("149"))
	assert.False(t, ValidCityID("0c5b2444-70a0-4932-980c"))
	assert.False(t, ValidCityID("urn:uuid:0c5b2444-70a0-4932-980c-b4dc0d3f02b5"))
}

func TestLoadCity_FallsBackToDefault(t *testing.T) {
	svc := newService(t, &fakeAPI{})

	city := svc.LoadCity(context.Background())
	assert.Equal(t, svc.DefaultCity(), city)
	assert.True(t, ValidCityID(city.ID))
}

func TestOptionsDefaults(t *testing.T) {
	svc := New(&fakeAPI{}, filecache.New(t.TempDir(), nil), nil, Options{})

	assert.Equal(t, 12*time.Hour, svc.opts.TreeTTL)
	assert.Equal(t, 10*time.Minute, svc.opts.OffersTTL)
	assert.Equal(t, 24, svc.opts.PageSize)
	assert.NotEmpty(t, svc.opts.DefaultCity.ID)
}
