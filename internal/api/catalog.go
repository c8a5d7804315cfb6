package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/cart"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Catalog reads products, keeping recently viewed product details in an LRU.
type Catalog struct {
	client *Client
	cache  *lru.Cache[int64, ProductDetail]
}

func NewCatalog(client *Client, size int) (*Catalog, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[int64, ProductDetail](size)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	return &Catalog{client: client, cache: cache}, nil
}

func (c *Catalog) Products(ctx context.Context, p ListParams) (*ProductPage, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.MinRating > 0 {
		q.Set("min_rating", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}
	if p.Ordering != "" {
		q.Set("ordering", p.Ordering)
	}

	path := "/products/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res ProductPage
	if err := c.client.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Product returns the product detail, from cache when present.
func (c *Catalog) Product(ctx context.Context, id int64) (ProductDetail, error) {
	if p, ok := c.cache.Get(id); ok {
		return p, nil
	}

	var res ProductDetail
	if err := c.client.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/", id), nil, &res); err != nil {
		return ProductDetail{}, err
	}
	c.cache.Add(id, res)
	return res, nil
}

// Invalidate drops a cached product, e.g. after its stock changed.
func (c *Catalog) Invalidate(id int64) {
	c.cache.Remove(id)
}

func (c *Catalog) Rating(ctx context.Context, id int64) (*ProductRating, error) {
	var res ProductRating
	if err := c.client.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/rating/", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Catalog) Reviews(ctx context.Context, id int64) ([]Review, error) {
	var res []Review
	if err := c.client.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/reviews/", id), nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Catalog) AddReview(ctx context.Context, id int64, rating int, comment string) (*Review, error) {
	body := Review{ProductID: id, Rating: rating, Comment: comment}

	var res Review
	if err := c.client.do(ctx, http.MethodPost, fmt.Sprintf("/products/%d/reviews/", id), body, &res); err != nil {
		return nil, err
	}
	// rating aggregates changed
	c.Invalidate(id)
	return &res, nil
}

// CartProduct maps a product detail to what the cart stores.
func (p ProductDetail) CartProduct() cart.Product {
	stock := p.Stock
	return cart.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: &stock,
	}
}
