// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/abgdnv/storecatalog/pkg/messaging"
	"github.com/abgdnv/storecatalog/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByCode retrieves a single product by its code.
	// Returns ErrProductNotFound if no product exists with the given code.
	FindByCode(ctx context.Context, code string) (*ProductDto, error)

	// FindAll returns products ordered by id. Nil offset or limit means no bound.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit *int32) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	// Returns ErrProductAlreadyExists if the code is taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// ChangePrice overwrites the price of a product.
	// Returns ErrProductNotFound if no product exists with the given code.
	ChangePrice(ctx context.Context, code string, price decimal.Decimal) (*ProductDto, error)

	// Update merges the present fields of patch onto the stored product.
	// Returns ErrProductNotFound if no product exists with the given code.
	Update(ctx context.Context, code string, patch ProductPatchDto) (*ProductDto, error)

	// DeleteByCode removes a product by its code.
	// Returns ErrProductNotFound if no product exists with the given code.
	DeleteByCode(ctx context.Context, code string) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository.
// Change events go to publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) FindByCode(ctx context.Context, code string) (*ProductDto, error) {
	product, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by code %s: %w", code, err)
	}
	return toDto(product), nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit *int32) ([]ProductDto, error) {
	var page store.Page
	if offset != nil {
		page.Offset = *offset
	}
	if limit != nil {
		page.Limit = *limit
	}
	products, err := s.repository.FindAll(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// Create checks the code up front for a quick answer; the store still
// rejects a duplicate that slips in concurrently.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	exists, err := s.repository.ExistsByCode(ctx, product.ProductCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code %s: %w", product.ProductCode, err)
	}
	if exists {
		return nil, cerrors.ErrProductAlreadyExists
	}

	created, err := s.repository.Create(ctx, store.Product{
		ProductCode: product.ProductCode,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Msrp:        product.Msrp,
		Stock:       product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreatedEvent{ProductEvent: newProductEvent(created)})
	return toDto(created), nil
}

func (s *Service) ChangePrice(ctx context.Context, code string, price decimal.Decimal) (*ProductDto, error) {
	product, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by code %s: %w", code, err)
	}
	oldPrice := product.Price
	product.Price = price

	updated, err := s.repository.Update(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("failed to change price of product %s: %w", code, err)
	}

	s.publish(ctx, events.ProductPriceChangedEvent{ProductEvent: newProductEvent(updated), OldPrice: oldPrice})
	return toDto(updated), nil
}

func (s *Service) Update(ctx context.Context, code string, patch ProductPatchDto) (*ProductDto, error) {
	product, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by code %s: %w", code, err)
	}
	applyPatch(product, patch)

	updated, err := s.repository.Update(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", code, err)
	}

	s.publish(ctx, events.ProductUpdatedEvent{ProductEvent: newProductEvent(updated)})
	return toDto(updated), nil
}

func (s *Service) DeleteByCode(ctx context.Context, code string) error {
	product, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to fetch product by code %s: %w", code, err)
	}
	if err = s.repository.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", code, err)
	}

	s.publish(ctx, events.ProductDeletedEvent{ProductEvent: newProductEvent(product)})
	return nil
}

// SeedProducts creates the given products unless their code is already present.
// It returns the number of products created.
func (s *Service) SeedProducts(ctx context.Context, products []ProductCreateDto) (int, error) {
	created := 0
	for _, p := range products {
		exists, err := s.repository.ExistsByCode(ctx, p.ProductCode)
		if err != nil {
			return created, fmt.Errorf("failed to check product code %s: %w", p.ProductCode, err)
		}
		if exists {
			continue
		}
		if _, err = s.Create(ctx, p); err != nil {
			return created, fmt.Errorf("failed to seed product %s: %w", p.ProductCode, err)
		}
		created++
	}
	return created, nil
}

// applyPatch copies the present fields of patch onto product.
// The product code is never changed and msrp is always replaced.
func applyPatch(product *store.Product, patch ProductPatchDto) {
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		product.Stock = patch.Stock
	}
	product.Msrp = patch.Msrp
}

func newProductEvent(p *store.Product) events.ProductEvent {
	return events.ProductEvent{
		EventID:     uuid.NewString(),
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		OccurredAt:  time.Now().UTC(),
	}
}

// publish sends the event and only logs a failure; the write already succeeded.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}
