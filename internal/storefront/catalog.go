package storefront

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// CatalogPath — страница каталога в консоли.
const CatalogPath = "/products"

// Сортировка по умолчанию.
const DefaultSort = "id-ASC"

// Sorts — допустимые варианты сортировки каталога (поле-НАПРАВЛЕНИЕ).
var Sorts = []view.SortOption{
	{Value: "id-ASC", Label: "Default"},
	{Value: "price-ASC", Label: "Price: Low to High"},
	{Value: "price-DESC", Label: "Price: High to Low"},
	{Value: "popularity-DESC", Label: "Most Popular"},
	{Value: "name-ASC", Label: "Name: A to Z"},
}

// CatalogQuery — состояние каталога из query-строки консоли.
// Пустой фильтр — "не выбран", "0" — явно выбраны все.
type CatalogQuery struct {
	Query      string
	CategoryID string
	BrandID    string
	Sort       string
	Page       int
}

func ParseCatalogQuery(q url.Values) CatalogQuery {
	cq := CatalogQuery{
		Query:      strings.TrimSpace(q.Get("query")),
		CategoryID: q.Get("categoryId"),
		BrandID:    q.Get("brandId"),
		Sort:       DefaultSort,
	}

	if s := q.Get("sort"); validSort(s) {
		cq.Sort = s
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		cq.Page = p
	}

	return cq
}

func validSort(s string) bool {
	for _, o := range Sorts {
		if o.Value == s {
			return true
		}
	}

	return false
}

func selected(id string) bool { return id != "" && id != "0" }

// params — параметры консоли без страницы (для пейджера и формы сортировки).
func (q CatalogQuery) params() url.Values {
	v := url.Values{}
	if q.Query != "" {
		v.Set("query", q.Query)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	if q.BrandID != "" {
		v.Set("brandId", q.BrandID)
	}
	if q.Sort != DefaultSort {
		v.Set("sort", q.Sort)
	}

	return v
}

// UpstreamPath — запрос к /home/getAllProducts.
// Фильтр "0" (все) в апстрим не передаётся.
func (q CatalogQuery) UpstreamPath() string {
	field, dir, _ := strings.Cut(q.Sort, "-")

	v := url.Values{
		"sortField":     {field},
		"sortDirection": {dir},
		"page":          {strconv.Itoa(q.Page)},
	}
	if selected(q.CategoryID) {
		v.Set("categoryId", q.CategoryID)
	}
	if selected(q.BrandID) {
		v.Set("brandId", q.BrandID)
	}
	if q.Query != "" {
		v.Set("query", q.Query)
	}

	return pathProducts + "?" + v.Encode()
}

// Title — заголовок каталога по выбранным фильтрам.
func (q CatalogQuery) Title(categories, brands []models.Named) string {
	switch {
	case q.Query != "" && q.CategoryID == "" && q.BrandID == "":
		return `Search: "` + q.Query + `"`
	case selected(q.CategoryID) && selected(q.BrandID):
		return nameOf(brands, q.BrandID) + " " + nameOf(categories, q.CategoryID)
	case selected(q.CategoryID):
		return "All " + nameOf(categories, q.CategoryID)
	case selected(q.BrandID):
		return nameOf(brands, q.BrandID) + " products"
	default:
		return "All Products"
	}
}

func nameOf(list []models.Named, id string) string {
	for _, n := range list {
		if strconv.FormatInt(n.ID, 10) == id {
			return n.Name
		}
	}

	return id
}

// Catalog грузит страницу каталога и списки фильтров параллельно.
func (s *Service) Catalog(ctx context.Context, region *view.Region, q CatalogQuery) {
	const op = "storefront.Catalog"

	tk := region.Begin()
	log := logctx.From(ctx)

	var (
		page       models.Page[models.Product]
		categories []models.Named
		brands     []models.Named
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.GetJSON(gctx, q.UpstreamPath(), &page)
	})
	g.Go(func() error {
		if err := s.api.GetJSON(gctx, pathCategories, &categories); err != nil {
			log.Warn("categories_load_failed", "op", op, "err", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.api.GetJSON(gctx, pathBrands, &brands); err != nil {
			log.Warn("brands_load_failed", "op", op, "err", err)
		}
		return nil
	})
	err := g.Wait()

	cv := view.CatalogView{
		Title:      q.Title(categories, brands),
		Query:      q.Query,
		Categories: filterLinks("categoryId", "All Categories", q.CategoryID, q, categories),
		Brands:     filterLinks("brandId", "All Brands", q.BrandID, q, brands),
		SortAction: CatalogPath,
	}

	for _, o := range Sorts {
		o.Selected = o.Value == q.Sort
		cv.Sorts = append(cv.Sorts, o)
	}
	params := q.params()
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "sort" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		cv.SortHidden = append(cv.SortHidden, view.Hidden{Name: k, Value: params.Get(k)})
	}

	if err != nil {
		log.Warn("products_load_failed", "op", op, "kind", apierrors.KindOf(err).String(), "err", err)
		cv.Alert = &view.Alert{Level: view.LevelDanger, Message: "Error when loading products: " + apierrors.Detail(err)}
		region.Commit(tk, cv)
		return
	}

	cv.Products = cards(page.Content)
	cv.Pager = view.NewPager(page.Number, page.TotalPages, CatalogPath, q.params())
	region.Commit(tk, cv)
}

// filterLinks — "все" плюс по ссылке на каждый элемент.
// Выбор фильтра сбрасывает поиск и страницу.
func filterLinks(key, allLabel, current string, q CatalogQuery, items []models.Named) []view.FilterLink {
	link := func(id string) string {
		v := q.params()
		v.Del("query")
		v.Set(key, id)
		return CatalogPath + "?" + v.Encode()
	}

	out := make([]view.FilterLink, 0, len(items)+1)
	out = append(out, view.FilterLink{
		ID:       0,
		Label:    allLabel,
		URL:      link("0"),
		Selected: current == "0" || (current == "" && q.Query == ""),
	})
	for _, n := range items {
		id := strconv.FormatInt(n.ID, 10)
		out = append(out, view.FilterLink{ID: n.ID, Label: n.Name, URL: link(id), Selected: current == id})
	}

	return out
}

// Home — популярные товары на главной.
func (s *Service) Home(ctx context.Context, region *view.Region) {
	const op = "storefront.Home"

	tk := region.Begin()

	var products []models.Product
	if err := s.api.GetJSON(ctx, pathHome, &products); err != nil {
		logctx.From(ctx).Warn("products_load_failed", "op", op, "err", err)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error when loading products: " + apierrors.Detail(err)})
		return
	}

	region.Commit(tk, view.HomeView{Products: cards(products)})
}

// Product — страница товара.
func (s *Service) Product(ctx context.Context, region *view.Region, id int64) {
	const op = "storefront.Product"

	tk := region.Begin()

	var p models.ProductInfo
	if err := s.api.GetJSON(ctx, pathProduct+strconv.FormatInt(id, 10), &p); err != nil {
		logctx.From(ctx).Warn("product_load_failed", "op", op, "id", id, "err", err)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error while downloading the product. Please try again later."})
		return
	}

	region.Commit(tk, view.ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Image:       p.ImageURL,
		Brand:       p.BrandName,
		Category:    p.CategoryName,
		Description: p.Description,
		Price:       view.Money(p.Price),
		Quantity:    p.Quantity,
	})
}
