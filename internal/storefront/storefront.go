package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/cache"
	"chizhikfront/internal/catalog"
)

const (
	cityKey   = "city"
	offersKey = "offers:active"
)

var ErrInvalidCity = errors.New("city id is not a valid UUID")

type Options struct {
	TreeTTL   time.Duration // default 12h
	OffersTTL time.Duration // default 10m
	PageSize  int           // default 24

	Display     catalog.DisplayOptions
	DefaultCity City
}

// ProductList is what a section of the page renders: the discounted subset
// of a listing when real discounts exist, otherwise the plain listing.
type ProductList struct {
	Items      []chizhik.Product
	Discounted bool
	Page       int
	HasMore    bool
}

type Service struct {
	api   chizhik.ChizhikService
	cache cache.Store
	log   *slog.Logger
	opts  Options
}

func New(api chizhik.ChizhikService, store cache.Store, log *slog.Logger, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.TreeTTL <= 0 {
		opts.TreeTTL = 12 * time.Hour
	}
	if opts.OffersTTL <= 0 {
		opts.OffersTTL = 10 * time.Minute
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 24
	}
	if opts.DefaultCity.ID == "" {
		// Москва
		opts.DefaultCity = City{ID: "0c5b2444-70a0-4932-980c-b4dc0d3f02b5", Name: "Москва"}
	}
	return &Service{api: api, cache: store, log: log, opts: opts}
}

func (s *Service) DefaultCity() City { return s.opts.DefaultCity }

// ValidCityID accepts only the canonical textual UUID form; anything else
// is never persisted nor sent upstream.
func ValidCityID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// LoadCity returns the persisted selection, falling back to the default
// city (and persisting it) when nothing valid is stored.
func (s *Service) LoadCity(ctx context.Context) City {
	var c City
	if cache.GetJSON(ctx, s.cache, cityKey, cache.MaxTTL, &c) && ValidCityID(c.ID) && c.Name != "" {
		return c
	}
	c = s.opts.DefaultCity
	s.cache.Set(ctx, cityKey, c)
	return c
}

// SelectCity validates, persists and switches the session to a new city.
// Everything derived from the old city is dropped.
func (s *Service) SelectCity(ctx context.Context, sess *Session, city City) error {
	if !ValidCityID(city.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidCity, city.ID)
	}
	if city.Name == "" {
		city.Name = "Город"
	}
	s.cache.Set(ctx, cityKey, city)
	sess.reset(city)
	return nil
}

// FindCity resolves a city by name: exact (case-insensitive) match first,
// otherwise the backend's top hit.
func (s *Service) FindCity(ctx context.Context, name string) (City, error) {
	items, err := s.api.SearchCities(ctx, name, 1)
	if err != nil {
		return City{}, fmt.Errorf("search cities: %w", err)
	}
	if len(items) == 0 {
		return City{}, fmt.Errorf("city %q not found", name)
	}

	norm := strings.ToLower(strings.TrimSpace(name))
	best := items[0]
	for _, c := range items {
		if strings.ToLower(strings.TrimSpace(c.Name)) == norm {
			best = c
			break
		}
	}
	return City{ID: best.FiasID, Name: best.Name}, nil
}

// LoadTree fills the session's tree and display categories, from cache
// when fresh enough, otherwise from the backend (which is polled through
// 202/503 while it builds the tree).
func (s *Service) LoadTree(ctx context.Context, sess *Session) error {
	key := "tree:" + sess.City.ID

	var tree []catalog.Category
	if cache.GetJSON(ctx, s.cache, key, s.opts.TreeTTL, &tree) {
		s.applyTree(sess, tree)
		s.log.Debug("tree from cache", "city_id", sess.City.ID, "main_cats", len(sess.DisplayCats))
		return nil
	}

	tree, err := s.api.CategoryTree(ctx, sess.City.ID)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	s.cache.Set(ctx, key, tree)
	s.applyTree(sess, tree)

	s.log.Info("tree loaded",
		"city_id", sess.City.ID,
		"nodes", len(catalog.Flatten(tree)),
		"main_cats", len(sess.DisplayCats),
	)
	return nil
}

func (s *Service) applyTree(sess *Session, tree []catalog.Category) {
	sess.Tree = tree
	sess.DisplayCats = catalog.DisplayCategories(tree, s.opts.Display)
	sess.PromoCatID = 0
	sess.PromoResolved = false
}

// ResolvePromo fills the session's promo category id, loading the tree
// first when needed. ok == false means the tree offers no promo surface;
// the page must carry on without the deals section.
func (s *Service) ResolvePromo(ctx context.Context, sess *Session) (int64, bool, error) {
	if sess.Tree == nil {
		if err := s.LoadTree(ctx, sess); err != nil {
			return 0, false, err
		}
	}

	if !sess.PromoResolved {
		id, ok := catalog.ResolvePromoCategoryID(sess.Tree, s.opts.Display)
		sess.PromoResolved = true
		if !ok {
			s.log.Warn("no promo category in tree", "city_id", sess.City.ID)
			id = 0
		}
		sess.PromoCatID = id
	}
	return sess.PromoCatID, sess.PromoCatID != 0, nil
}

// LoadPromo switches the session to the deals surface and loads its first
// page. A tree without a promo category is not an error: the returned list
// is simply empty and the caller skips the section.
func (s *Service) LoadPromo(ctx context.Context, sess *Session) (ProductList, error) {
	_, ok, err := s.ResolvePromo(ctx, sess)
	if err != nil {
		return ProductList{}, err
	}

	sess.Mode = ModePromo
	sess.SelectedCat = nil
	sess.SelectedCatID = 0
	sess.Query = ""
	sess.Page = 1

	if !ok {
		sess.HasMore = false
		return ProductList{Page: sess.Page}, nil
	}

	return s.loadPage(ctx, sess)
}

// SelectCategory switches the session to a category listing and loads its
// first page. The category does not have to be a display tile; any node id
// from the tree works (deep links).
func (s *Service) SelectCategory(ctx context.Context, sess *Session, categoryID int64) (ProductList, error) {
	sess.Mode = ModeCategory
	sess.SelectedCatID = categoryID
	sess.SelectedCat = nil
	sess.Query = ""
	sess.Page = 1

	if cat, ok := catalog.FindByID(sess.Tree, categoryID); ok {
		sess.SelectedCat = &cat
	}

	return s.loadPage(ctx, sess)
}

// Search switches the session to search mode within the promo category's
// scope (the backend searches across the whole catalog when category_id
// is 0).
func (s *Service) Search(ctx context.Context, sess *Session, query string) (ProductList, error) {
	sess.Mode = ModeSearch
	sess.Query = query
	sess.SelectedCat = nil
	sess.SelectedCatID = 0
	sess.Page = 1

	return s.loadPage(ctx, sess)
}

// LoadMore advances the current mode by one page.
func (s *Service) LoadMore(ctx context.Context, sess *Session) (ProductList, error) {
	if sess.Mode == ModePromo && sess.PromoCatID == 0 {
		return ProductList{Page: sess.Page}, nil
	}
	sess.Page++
	return s.loadPage(ctx, sess)
}

// GoToPage loads an arbitrary page in the session's current mode, for
// deep links that land in the middle of a listing.
func (s *Service) GoToPage(ctx context.Context, sess *Session, page int) (ProductList, error) {
	if page <= 0 {
		page = 1
	}
	sess.Page = page
	return s.loadPage(ctx, sess)
}

func (s *Service) loadPage(ctx context.Context, sess *Session) (ProductList, error) {
	var categoryID int64
	switch sess.Mode {
	case ModePromo:
		categoryID = sess.PromoCatID
	case ModeCategory:
		categoryID = sess.SelectedCatID
	}

	page, err := s.api.Products(ctx, sess.City.ID, categoryID, sess.Page, sess.Query)
	if err != nil {
		sess.HasMore = false
		return ProductList{}, fmt.Errorf("load products: %w", err)
	}
	sess.HasMore = page.Next

	// в любом режиме: если есть реальные скидки, показываем их,
	// иначе весь список; страница режется после фильтра
	items := page.Items
	isDiscounted := false
	if discounted := catalog.FilterDiscounted(items); len(discounted) > 0 {
		items = discounted
		isDiscounted = true
	}
	if len(items) > s.opts.PageSize {
		items = items[:s.opts.PageSize]
	}

	return ProductList{Items: items, Discounted: isDiscounted, Page: sess.Page, HasMore: page.Next}, nil
}

// ActiveOffers returns the cached promo banner. Any failure means "no
// banner", never a page-level error.
func (s *Service) ActiveOffers(ctx context.Context) (chizhik.Offers, bool) {
	var offers chizhik.Offers
	if cache.GetJSON(ctx, s.cache, offersKey, s.opts.OffersTTL, &offers) {
		return offers, true
	}

	offers, err := s.api.ActiveOffers(ctx)
	if err != nil {
		s.log.Warn("active offers unavailable", "err", err)
		return chizhik.Offers{}, false
	}
	s.cache.Set(ctx, offersKey, offers)
	return offers, true
}

// ProductInfo fetches the full detail for a product card.
func (s *Service) ProductInfo(ctx context.Context, sess *Session, productID int64) (chizhik.Product, error) {
	p, err := s.api.ProductInfo(ctx, productID, sess.City.ID)
	if err != nil {
		return chizhik.Product{}, fmt.Errorf("product info: %w", err)
	}
	return p, nil
}
