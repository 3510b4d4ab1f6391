// Package store provides the persistence layer for products and users.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as persisted.
type Product struct {
	ID          int64
	ProductCode string
	Name        string
	Description *string
	Price       decimal.Decimal
	Msrp        decimal.NullDecimal
	Stock       *int64
}

// User is an account able to authenticate against the API.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	Locked       bool
	Enabled      bool
}

// Page selects a window of an ordered listing. A zero Limit means no limit.
type Page struct {
	Offset int32
	Limit  int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByCode retrieves a single product by its code.
	// Returns ErrProductNotFound if no product exists with the given code.
	FindByCode(ctx context.Context, code string) (*Product, error)

	// ExistsByCode reports whether a product with the given code exists.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// FindAll returns products ordered by id.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, page Page) ([]Product, error)

	// Create adds a new product and assigns its id.
	// Returns ErrProductAlreadyExists if the code is taken.
	Create(ctx context.Context, product Product) (*Product, error)

	// Update overwrites every mutable field of the product with the same code.
	// Returns ErrProductNotFound if no product exists with the given code.
	Update(ctx context.Context, product Product) (*Product, error)

	// DeleteByCode removes a product by its code.
	// Returns ErrProductNotFound if no product exists with the given code.
	DeleteByCode(ctx context.Context, code string) error
}

// UserStore is an interface for user account storage.
type UserStore interface {
	// FindByUsername returns ErrUserNotFound if the account does not exist.
	FindByUsername(ctx context.Context, username string) (*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create returns ErrUserAlreadyExists if the username is taken.
	Create(ctx context.Context, user User) (*User, error)
}
