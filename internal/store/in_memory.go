package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/shopspring/decimal"
)

// numericLimit is the first value that no longer fits NUMERIC(19,2).
var numericLimit = decimal.New(1, 17)

// applyColumnRules rounds amounts to cents and enforces the same constraints
// as the products table.
func applyColumnRules(product Product) (Product, error) {
	product.Price = product.Price.Round(2)
	if !product.Price.IsPositive() || product.Price.Abs().GreaterThanOrEqual(numericLimit) {
		return Product{}, fmt.Errorf("%w: price %s", cerrors.ErrDataIntegrity, product.Price)
	}
	if product.Msrp.Valid {
		product.Msrp.Decimal = product.Msrp.Decimal.Round(2)
		if !product.Msrp.Decimal.IsPositive() || product.Msrp.Decimal.Abs().GreaterThanOrEqual(numericLimit) {
			return Product{}, fmt.Errorf("%w: msrp %s", cerrors.ErrDataIntegrity, product.Msrp.Decimal)
		}
	}
	if product.Stock != nil && *product.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock %d", cerrors.ErrDataIntegrity, *product.Stock)
	}
	return product, nil
}

// InMemoryStore implements ProductStore using an in-memory map keyed by product code.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]Product),
		nextID:   1,
	}
}

// FindByCode retrieves a product by its code.
func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[code]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) ExistsByCode(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[code]
	return ok, nil
}

// FindAll retrieves products ordered by id.
func (s *InMemoryStore) FindAll(_ context.Context, page Page) ([]Product, error) {
	s.mu.RLock()
	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	start := min(int(page.Offset), len(list))
	end := len(list)
	if page.Limit > 0 {
		end = min(start+int(page.Limit), len(list))
	}
	return list[start:end], nil
}

// Create stores the product under a fresh id. The code check and the insert
// happen under the same lock.
func (s *InMemoryStore) Create(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ProductCode]; exists {
		return nil, cerrors.ErrProductAlreadyExists
	}
	product, err := applyColumnRules(product)
	if err != nil {
		return nil, err
	}
	product.ID = s.nextID
	s.nextID++
	s.products[product.ProductCode] = product

	return &product, nil
}

func (s *InMemoryStore) Update(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.ProductCode]
	if !exists {
		return nil, cerrors.ErrProductNotFound
	}
	product, err := applyColumnRules(product)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	s.products[product.ProductCode] = product
	return &product, nil
}

// DeleteByCode deletes a product by its code.
func (s *InMemoryStore) DeleteByCode(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[code]; !exists {
		return cerrors.ErrProductNotFound
	}
	delete(s.products, code)
	return nil
}

// InMemoryUserStore implements UserStore using an in-memory map keyed by username.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int64
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:  make(map[string]User),
		nextID: 1,
	}
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, cerrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *InMemoryUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

func (s *InMemoryUserStore) Create(_ context.Context, user User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, cerrors.ErrUserAlreadyExists
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.Username] = user
	return &user, nil
}
