package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Tokarsky98/GroceryMartAI/internal/catalog/domain"
	"github.com/Tokarsky98/GroceryMartAI/internal/catalog/repository"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
)

const DefaultPageSize = 12

// ListQuery captures the filtering, sorting and paging options of the
// product listing endpoint.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string // "price-asc", "price-desc", "name" or "" (newest first)
}

// ListResult is one page of products plus paging totals.
type ListResult struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// CatalogService owns product reads and admin writes. Writes propagate
// stock and price into the inventory store, which is the figure the cart
// and order paths trust.
type CatalogService struct {
	repo repository.ProductRepository
	inv  *inventory.Store
}

func NewCatalogService(repo repository.ProductRepository, inv *inventory.Store) *CatalogService {
	return &CatalogService{repo: repo, inv: inv}
}

// PrimeInventory loads every product's stock and price into the inventory
// store. Called once at startup.
func (s *CatalogService) PrimeInventory(ctx context.Context) error {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("prime inventory: %w", err)
	}
	for _, p := range products {
		s.inv.SetStock(p.ID, p.Stock)
		s.inv.SetPrice(p.ID, p.Price)
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	s.overlayStock(products)

	filtered := products[:0:0]
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Search != "" && !matches(p, q.Search) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case "price-asc":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.LessThan(filtered[j].Price)
		})
	case "price-desc":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[j].Price.LessThan(filtered[i].Price)
		})
	case "name":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Name < filtered[j].Name
		})
	default:
		// Newest first.
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].ID > filtered[j].ID
		})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	total := len(filtered)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ListResult{
		Products: filtered[start:end],
		Total:    total,
		Page:     page,
		Pages:    pages,
	}, nil
}

// Search returns all products whose name or description contains the
// query, case-insensitively. An empty query returns no products.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if query == "" {
		return []*domain.Product{}, nil
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	s.overlayStock(products)

	results := make([]*domain.Product, 0)
	for _, p := range products {
		if matches(p, query) {
			results = append(results, p)
		}
	}
	return results, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.overlayStock([]*domain.Product{p})
	return p, nil
}

// Categories aggregates distinct category names with product counts, in
// first-seen order.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	counts := make(map[string]int)
	var names []string
	for _, p := range products {
		if _, seen := counts[p.Category]; !seen {
			names = append(names, p.Category)
		}
		counts[p.Category]++
	}

	categories := make([]domain.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, domain.Category{Name: name, Count: counts[name]})
	}
	return categories, nil
}

func (s *CatalogService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p.ID = id
	s.inv.SetStock(id, p.Stock)
	s.inv.SetPrice(id, p.Price)
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.inv.SetStock(p.ID, p.Stock)
	s.inv.SetPrice(p.ID, p.Price)
	return s.repo.GetByID(ctx, p.ID)
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.inv.Delete(id)
	return nil
}

// overlayStock replaces the stored stock figure with the live inventory
// one, so listings reflect stock consumed by placed orders. Products
// missing from the inventory keep their stored figure.
func (s *CatalogService) overlayStock(products []*domain.Product) {
	for _, p := range products {
		if qty, err := s.inv.GetStock(p.ID); err == nil {
			p.Stock = qty
		}
	}
}

func matches(p *domain.Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
