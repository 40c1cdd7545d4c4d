package shop

import (
	"context"
	"fmt"

	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

// ValidationError blocks a submission before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Service manages a shop-template bot's catalog: categories and products.
type Service struct {
	Platform *platform.Client
	Log      *zap.Logger
}

func NewService(client *platform.Client, log *zap.Logger) *Service {
	return &Service{
		Platform: client,
		Log:      log,
	}
}

func (s *Service) Categories(ctx context.Context, botID int64) ([]platform.ShopCategory, error) {
	categories, err := s.Platform.ShopCategories(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (s *Service) Products(ctx context.Context, botID, categoryID int64) ([]platform.ShopProduct, error) {
	products, err := s.Platform.ShopProducts(ctx, botID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (s *Service) CreateCategory(ctx context.Context, category platform.ShopCategory) (*platform.ShopCategory, error) {
	if category.Name == "" {
		return nil, &ValidationError{Message: "Укажите название категории"}
	}

	created, err := s.Platform.CreateShopCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.Log.Info("shop category created",
		zap.Int64("bot_id", category.BotID),
		zap.Int64("category_id", created.ID))
	return created, nil
}

func (s *Service) CreateProduct(ctx context.Context, product platform.ShopProduct) (*platform.ShopProduct, error) {
	if err := validateProduct(product.Name, product.Price); err != nil {
		return nil, err
	}

	created, err := s.Platform.CreateShopProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.Log.Info("shop product created",
		zap.Int64("bot_id", product.BotID),
		zap.Int64("product_id", created.ID))
	return created, nil
}

// UpdateProduct sends a sparse update; only the fields in payload change.
// The product id is required, everything else is optional.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, payload map[string]interface{}) error {
	if name, ok := payload["name"].(string); ok && name == "" {
		return &ValidationError{Message: "Укажите название товара"}
	}
	if price, ok := payload["price"].(float64); ok && price < 0 {
		return &ValidationError{Message: "Цена не может быть отрицательной"}
	}

	payload["id"] = productID
	if err := s.Platform.UpdateShopProduct(ctx, payload); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.Platform.DeleteShopProduct(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.Log.Info("shop product deleted", zap.Int64("product_id", productID))
	return nil
}

func validateProduct(name string, price float64) error {
	if name == "" {
		return &ValidationError{Message: "Укажите название товара"}
	}
	if price < 0 {
		return &ValidationError{Message: "Цена не может быть отрицательной"}
	}
	return nil
}
