package service

import (
	"context"
	"fmt"

	"github.com/Tokarsky98/GroceryMartAI/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name        string
	description string
	price       string
	category    string
	image       string
	stock       int
}

var seedProducts = []seedProduct{
	{"Fresh Apples", "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", "4.99", "Fruits", "https://picsum.photos/seed/apple/300/200", 50},
	{"Organic Bananas", "Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.", "2.99", "Fruits", "https://picsum.photos/seed/banana/300/200", 30},
	{"Fresh Milk", "Ut enim ad minim veniam, quis nostrud exercitation ullamco.", "3.49", "Dairy", "https://picsum.photos/seed/milk/300/200", 20},
	{"Whole Wheat Bread", "Duis aute irure dolor in reprehenderit in voluptate velit esse.", "2.99", "Bakery", "https://picsum.photos/seed/bread/300/200", 15},
	{"Free Range Eggs", "Excepteur sint occaecat cupidatat non proident sunt in culpa.", "5.99", "Dairy", "https://picsum.photos/seed/eggs/300/200", 25},
	{"Fresh Tomatoes", "Qui officia deserunt mollit anim id est laborum consectetur.", "3.99", "Vegetables", "https://picsum.photos/seed/tomato/300/200", 40},
	{"Organic Carrots", "Lorem ipsum dolor sit amet, consectetur adipiscing elit sed do.", "2.49", "Vegetables", "https://picsum.photos/seed/carrot/300/200", 35},
	{"Greek Yogurt", "Eiusmod tempor incididunt ut labore et dolore magna aliqua ut enim.", "4.49", "Dairy", "https://picsum.photos/seed/yogurt/300/200", 18},
	{"Orange Juice", "Ad minim veniam quis nostrud exercitation ullamco laboris nisi.", "3.99", "Beverages", "https://picsum.photos/seed/juice/300/200", 22},
	{"Chicken Breast", "Ut aliquip ex ea commodo consequat duis aute irure dolor.", "8.99", "Meat", "https://picsum.photos/seed/chicken/300/200", 12},
	{"Salmon Fillet", "In reprehenderit in voluptate velit esse cillum dolore eu fugiat.", "12.99", "Seafood", "https://picsum.photos/seed/salmon/300/200", 8},
	{"Pasta", "Nulla pariatur excepteur sint occaecat cupidatat non proident.", "1.99", "Pantry", "https://picsum.photos/seed/pasta/300/200", 60},
}

// Seed inserts the demo grocery catalog when the store is empty, then
// primes the inventory with stock and prices.
func (s *CatalogService) Seed(ctx context.Context) error {
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	if len(existing) == 0 {
		for _, sp := range seedProducts {
			price, err := decimal.NewFromString(sp.price)
			if err != nil {
				return fmt.Errorf("seed catalog: parse price %q: %w", sp.price, err)
			}
			_, err = s.repo.Create(ctx, &domain.Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       price,
				Category:    sp.category,
				ImageURL:    sp.image,
				Stock:       sp.stock,
			})
			if err != nil {
				return fmt.Errorf("seed catalog: insert %q: %w", sp.name, err)
			}
		}
	}

	return s.PrimeInventory(ctx)
}
