package service

import (
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/shopspring/decimal"
)

func init() {
	// prices are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64               `json:"id"`
	ProductCode string              `json:"productCode"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Msrp        decimal.NullDecimal `json:"msrp"`
	Stock       *int64              `json:"stock"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	ProductCode string              `json:"productCode" validate:"notblank,max=100"`
	Name        string              `json:"name"        validate:"notblank,max=100"`
	Description *string             `json:"description"`
	Price       decimal.Decimal     `json:"price"       validate:"required,money"`
	Msrp        decimal.NullDecimal `json:"msrp"        validate:"omitempty,money"`
	Stock       *int64              `json:"stock"       validate:"omitempty,gte=0"`
}

// PriceChangeDto carries the new price of a product.
type PriceChangeDto struct {
	Price decimal.Decimal `json:"price" validate:"required,money"`
}

// ProductPatchDto is a partial update. Nil fields keep their stored value,
// except Msrp which always replaces the stored one.
type ProductPatchDto struct {
	Name        *string             `json:"name"        validate:"omitempty,notblank,max=100"`
	Description *string             `json:"description"`
	Price       *decimal.Decimal    `json:"price"       validate:"omitempty,money"`
	Msrp        decimal.NullDecimal `json:"msrp"        validate:"omitempty,money"`
	Stock       *int64              `json:"stock"       validate:"omitempty,gte=0"`
}

// RegisterUserDto is the registration request of a new account.
type RegisterUserDto struct {
	Username string `json:"username" validate:"notblank,max=100"`
	Password string `json:"password" validate:"notblank,min=6,maxbytes=72"`
	Role     string `json:"role"     validate:"notblank"`
}

// UserDto is the public view of an account. It never carries the password hash.
type UserDto struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
	Locked   bool   `json:"locked"`
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		ProductCode: product.ProductCode,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Msrp:        product.Msrp,
		Stock:       product.Stock,
	}
}

func toUserDto(user *store.User) *UserDto {
	return &UserDto{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Enabled:  user.Enabled,
		Locked:   user.Locked,
	}
}
