// Package app wires the catalog service together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storecatalog/internal/auth"
	"github.com/abgdnv/storecatalog/internal/config"
	"github.com/abgdnv/storecatalog/internal/service"
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/abgdnv/storecatalog/internal/transport/rest"
	"github.com/abgdnv/storecatalog/pkg/messaging"
	"github.com/abgdnv/storecatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Dependencies struct {
	ProductService *service.Service
	UserService    *service.UserService
	Logger         *slog.Logger
}

// Stores groups the persistence implementations the services run on.
type Stores struct {
	Products store.ProductStore
	Users    store.UserStore
}

// PgStores returns the PostgreSQL backed stores.
func PgStores(dbPool *pgxpool.Pool) Stores {
	return Stores{Products: store.NewPgStore(dbPool), Users: store.NewPgUserStore(dbPool)}
}

// MemoryStores returns empty in-memory stores.
func MemoryStores() Stores {
	return Stores{Products: store.NewInMemoryStore(), Users: store.NewInMemoryUserStore()}
}

func SetupDependencies(stores Stores, publisher messaging.Publisher, hashCost int, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(stores.Products, publisher, logger),
		UserService:    service.NewUserService(stores.Users, hashCost, logger),
		Logger:         logger,
	}
}

// Seed creates the configured users and sample products that do not exist yet.
func Seed(ctx context.Context, deps *Dependencies, cfg *config.Config) error {
	users := make([]service.RegisterUserDto, len(cfg.Auth.Users))
	for i, u := range cfg.Auth.Users {
		users[i] = service.RegisterUserDto{Username: u.Username, Password: u.Password, Role: u.Role}
	}
	createdUsers, err := deps.UserService.SeedUsers(ctx, users)
	if err != nil {
		return err
	}

	products := make([]service.ProductCreateDto, 0, len(cfg.Seed.Products))
	for _, p := range cfg.Seed.Products {
		dto, err := toCreateDto(p)
		if err != nil {
			return err
		}
		products = append(products, dto)
	}
	createdProducts, err := deps.ProductService.SeedProducts(ctx, products)
	if err != nil {
		return err
	}
	deps.Logger.InfoContext(ctx, "Seed data applied", "users", createdUsers, "products", createdProducts)
	return nil
}

func toCreateDto(p config.SeedProduct) (service.ProductCreateDto, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return service.ProductCreateDto{}, fmt.Errorf("seed product %s: %w", p.ProductCode, err)
	}
	dto := service.ProductCreateDto{
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       price,
		Stock:       p.Stock,
	}
	if p.Description != "" {
		description := p.Description
		dto.Description = &description
	}
	if p.Msrp != "" {
		msrp, err := decimal.NewFromString(p.Msrp)
		if err != nil {
			return service.ProductCreateDto{}, fmt.Errorf("seed product %s: %w", p.ProductCode, err)
		}
		dto.Msrp = decimal.NewNullDecimal(msrp)
	}
	return dto, nil
}

// SetupHttpHandler builds the router with every route and policy.
// Used by E2E tests to get the exact production handler.
func SetupHttpHandler(deps *Dependencies, realm, allowedOrigin string) http.Handler {
	mux := server.NewChiRouter(deps.Logger, allowedOrigin)
	wireRoutes(mux, deps, realm)
	return mux
}

// wireRoutes sets up the HTTP routes. /healthz stays public.
func wireRoutes(mux *chi.Mux, deps *Dependencies, realm string) {
	guard := auth.NewGuard(deps.UserService, realm, deps.Logger)
	mux.Get("/healthz", rest.HealthCheck)
	rest.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux, guard)
	rest.NewUserHandler(deps.UserService, deps.Logger).RegisterRoutes(mux, guard)
}

// SetupHttpServer creates and configures the HTTP server of the catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg.Auth.Realm, cfg.CORS.AllowedOrigin)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, mux)
}
