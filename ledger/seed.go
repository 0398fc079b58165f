package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SeedDemo loads the demo catalog into an empty store. Used by the server's
// -seed flag and by tests that want a realistic product mix.
func SeedDemo(ctx context.Context, store CatalogStore) error {
	products := []Product{
		{ID: "prod-001", Name: "Wireless Mouse", CostPrice: decimal.NewFromInt(15), SellingPrice: decimal.NewFromInt(30), Stock: 150, ImageURL: "https://picsum.photos/seed/product1/400/300", ImageHint: "wireless mouse"},
		{ID: "prod-002", Name: "Mechanical Keyboard", CostPrice: decimal.NewFromInt(60), SellingPrice: decimal.NewFromInt(100), Stock: 80, ImageURL: "https://picsum.photos/seed/product2/400/300", ImageHint: "mechanical keyboard"},
		{ID: "prod-003", Name: "4K Monitor", CostPrice: decimal.NewFromInt(250), SellingPrice: decimal.NewFromInt(400), Stock: 50, ImageURL: "https://picsum.photos/seed/product3/400/300", ImageHint: "computer monitor"},
		{ID: "prod-004", Name: "Noise-Cancelling Headphones", CostPrice: decimal.NewFromInt(80), SellingPrice: decimal.NewFromInt(150), Stock: 120, ImageURL: "https://picsum.photos/seed/product4/400/300", ImageHint: "headphones"},
		{ID: "prod-005", Name: "Webcam", CostPrice: decimal.NewFromInt(45), SellingPrice: decimal.NewFromInt(75), Stock: 200, ImageURL: "https://picsum.photos/seed/product5/400/300", ImageHint: "webcam"},
		{ID: "prod-006", Name: "Ergonomic Office Chair", CostPrice: decimal.NewFromInt(180), SellingPrice: decimal.NewFromInt(350), Stock: 30, ImageURL: "https://picsum.photos/seed/product6/400/300", ImageHint: "office chair"},
	}

	now := time.Now().UTC()
	for i := range products {
		products[i].CreatedAt = now
		if err := store.CreateProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].ID, err)
		}
	}
	return nil
}
