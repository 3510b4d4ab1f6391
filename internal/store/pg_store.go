package store

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE codes mapped to sentinel errors.
const (
	uniqueViolation      = "23505"
	checkViolation       = "23514"
	notNullViolation     = "23502"
	numericValueOutRange = "22003"
)

const productColumns = "id, product_code, name, description, price, msrp, stock"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.ProductCode, &p.Name, &p.Description, &p.Price, &p.Msrp, &p.Stock); err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case checkViolation, notNullViolation, numericValueOutRange:
		return true
	}
	return false
}

// FindByCode retrieves a product by its code.
// Returns ErrProductNotFound if no product exists with the given code.
func (p *PgStore) FindByCode(ctx context.Context, code string) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE product_code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by code: %w", err)
	}
	return product, nil
}

func (p *PgStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE product_code = $1)", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product code: %w", err)
	}
	return exists, nil
}

// FindAll retrieves products ordered by id within the requested page.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context, page Page) ([]Product, error) {
	var limit *int32
	if page.Limit > 0 {
		limit = &page.Limit
	}
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY id OFFSET $1 LIMIT $2", page.Offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		product, err := scanProduct(row)
		if err != nil {
			return Product{}, err
		}
		return *product, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the catalog.
// Returns ErrProductAlreadyExists if the product code is already used.
func (p *PgStore) Create(ctx context.Context, product Product) (*Product, error) {
	created, err := scanProduct(p.db.QueryRow(ctx,
		`INSERT INTO products (product_code, name, description, price, msrp, stock)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+productColumns,
		product.ProductCode, product.Name, product.Description, product.Price, product.Msrp, product.Stock))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cerrors.ErrProductAlreadyExists
		}
		if isIntegrityViolation(err) {
			return nil, fmt.Errorf("%w: %w", cerrors.ErrDataIntegrity, err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given code.
func (p *PgStore) Update(ctx context.Context, product Product) (*Product, error) {
	updated, err := scanProduct(p.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, msrp = $5, stock = $6
		 WHERE product_code = $1
		 RETURNING `+productColumns,
		product.ProductCode, product.Name, product.Description, product.Price, product.Msrp, product.Stock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		if isIntegrityViolation(err) {
			return nil, fmt.Errorf("%w: %w", cerrors.ErrDataIntegrity, err)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByCode removes a product by its code.
// Returns ErrProductNotFound if no product exists with the given code.
func (p *PgStore) DeleteByCode(ctx context.Context, code string) error {
	tag, err := p.db.Exec(ctx, "DELETE FROM products WHERE product_code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to delete product by code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}
