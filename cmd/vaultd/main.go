package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/vaultbin/vaultbin/cmd/vaultd/container"
	vaultmw "github.com/vaultbin/vaultbin/cmd/vaultd/middleware"
	"github.com/vaultbin/vaultbin/cmd/vaultd/repository"
	"github.com/vaultbin/vaultbin/cmd/vaultd/routes"
	"github.com/vaultbin/vaultbin/common/bootstrap"
	commonmw "github.com/vaultbin/vaultbin/common/middleware"
	"github.com/vaultbin/vaultbin/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (DB, logger, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "vaultd",
		bootstrap.WithDBInitHook(repository.InitSchema),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap vaultd: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, serviceContainer)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, c *container.Container) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())
	e.Use(vaultmw.ExtractOwner())

	if c.RateLimiter != nil {
		cfg := c.Components.Config.RateLimit
		e.Use(commonmw.GlobalRateLimitMiddleware(c.RateLimiter, cfg.GlobalPerMinute))
		e.Use(commonmw.OwnerRateLimitMiddleware(c.RateLimiter, cfg.OwnerPerMinute))
	}
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterCollectionRoutes(e, serviceContainer)
	routes.RegisterEntryRoutes(e, serviceContainer)
	routes.RegisterAdminRoutes(e, serviceContainer)
}

// startServer starts the HTTP server with graceful shutdown
func startServer(e *echo.Echo, components *bootstrap.Components) {
	srv := server.New("vaultd", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
