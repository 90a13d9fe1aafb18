package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"
)

const catalogListKey = "products:all"

// CatalogService serves product snapshots from the backend catalog.
// Snapshots are cached for a short TTL; AvailableStock is on-hand minus
// reserved, and products with no inventory row report zero stock.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]Product, error)
	// GetProduct returns ErrProductNotFound for unknown or inactive ids.
	GetProduct(ctx context.Context, id int) (*Product, error)
	// Invalidate drops cached snapshots for ids, or everything if none given.
	Invalidate(ids ...int)
}

type catalogService struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
}

// NewCatalogService returns a catalog backed by pool. A ttl of zero or less
// disables caching.
func NewCatalogService(pool *pgxpool.Pool, ttl time.Duration) CatalogService {
	s := &catalogService{pool: pool}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

const productSelect = `
	SELECT p.id, p.sku, p.name, p.selling_price, p.tax_rate, p.is_taxable,
	       COALESCE(ii.qty_on_hand - ii.qty_reserved, 0) AS available,
	       p.attributes
	FROM products p
	LEFT JOIN inventory_items ii ON ii.product_id = p.id
	WHERE p.is_active = true`

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(catalogListKey); ok {
			return copyProducts(v.([]Product)), nil
		}
	}

	rows, err := s.pool.Query(ctx, productSelect+" ORDER BY p.name, p.id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	if s.cache != nil {
		s.cache.SetDefault(catalogListKey, products)
		for _, p := range products {
			s.cache.SetDefault(productKey(p.ID), p)
		}
	}
	return copyProducts(products), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(productKey(id)); ok {
			p := v.(Product)
			return &p, nil
		}
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" AND p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(productKey(id), p)
	}
	return &p, nil
}

func (s *catalogService) Invalidate(ids ...int) {
	if s.cache == nil {
		return
	}
	if len(ids) == 0 {
		s.cache.Flush()
		return
	}
	s.cache.Delete(catalogListKey)
	for _, id := range ids {
		s.cache.Delete(productKey(id))
	}
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.SellingPrice, &p.TaxRate, &p.IsTaxable,
		&p.AvailableStock, &p.Attributes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("failed to scan product: %w", err)
	}
	if p.AvailableStock < 0 {
		p.AvailableStock = 0
	}
	return p, nil
}

func productKey(id int) string {
	return "product:" + strconv.Itoa(id)
}

func copyProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
