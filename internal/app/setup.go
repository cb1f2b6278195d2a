// Package app contains the application setup for the product service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/productmng/product-service/internal/config"
	"github.com/productmng/product-service/internal/service"
	"github.com/productmng/product-service/internal/store"
	"github.com/productmng/product-service/internal/transport/rest"
	"github.com/productmng/product-service/pkg/auth"
	"github.com/productmng/product-service/pkg/server"
)

// Role names expected in the token's roles claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Dependencies struct {
	ProductService service.ProductService
	Guards         rest.Guards
	Logger         *slog.Logger
}

// SetupDependencies wires the store, service and authorization guards.
func SetupDependencies(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	pService := service.NewService(store.NewPgStore(dbPool), logger)

	guards := rest.PassthroughGuards()
	if cfg.IdP.Enabled {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.IdP)
		if err != nil {
			return nil, fmt.Errorf("failed to set up token verifier: %w", err)
		}
		authenticate := auth.Middleware(verifier, logger)
		guards = rest.Guards{
			AdminOnly: chain(authenticate, auth.RequireRole(logger, RoleAdmin)),
			AnyRole:   chain(authenticate, auth.RequireRole(logger, RoleUser, RoleAdmin)),
		}
	}

	return &Dependencies{
		ProductService: pService,
		Guards:         guards,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the HTTP routes for the product service.
// Also used by the E2E tests to run the real handler in an httptest server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux, deps.Guards)
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config, serviceName string) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux, serviceName)
}

// chain composes middleware left to right.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
