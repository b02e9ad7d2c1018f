package main

import (
	"net/http"
	"os"

	"nestquery-listings/internal/handlers"
	"nestquery-listings/internal/middleware"
	"nestquery-listings/internal/repositories"
	"nestquery-listings/internal/services"
	"nestquery-listings/internal/validators"
	"nestquery-listings/pkg/cache"
	"nestquery-listings/pkg/config"
	"nestquery-listings/pkg/database"
	"nestquery-listings/pkg/describer"
	"nestquery-listings/pkg/logger"
	"nestquery-listings/pkg/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// App represents the application structure
type App struct {
	Config         *config.Config
	Router         *gin.Engine
	ListingHandler *handlers.ListingHandler
	RateLimiter    *middleware.RateLimiter
	Server         *http.Server
}

// Create and initialize a new App instance
func NewApp(cfg *config.Config) *App {
	app := &App{Config: cfg}

	// Initialize infrastructure
	app.initializeDatabase()
	app.initializeCache()
	app.initializeMetrics()
	app.initializeRateLimiter()

	// Initialize business logic
	app.initializeDependencies()

	// Initialize web layer
	app.initializeRouter()

	return app
}

// initialize the database connection
func (a *App) initializeDatabase() {
	if err := database.InitDB(a.Config.Database.URI, a.Config.Database.DBName); err != nil {
		logger.GlobalLogger.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
}

// initialize the Redis cache
func (a *App) initializeCache() {
	redisCfg := &cache.RedisConfig{
		Host:     a.Config.Redis.Host,
		Port:     a.Config.Redis.Port,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
	if err := cache.InitRedis(redisCfg); err != nil {
		logger.GlobalLogger.Errorf("Failed to initialize Redis: %v", err)
		os.Exit(1)
	}
}

// initialize Prometheus metrics
func (a *App) initializeMetrics() {
	metrics.Init()
}

// initialize the rate limiter
func (a *App) initializeRateLimiter() {
	a.RateLimiter = middleware.NewRateLimiter(rate.Limit(100/60.0), 10)
	go a.RateLimiter.Cleanup()
}

// initialize all dependencies
func (a *App) initializeDependencies() {
	// repositories
	listingRepo := repositories.NewListingRepository(database.DB)
	listingCache := repositories.NewListingCache()

	// validators
	listingValidator := validators.NewListingValidator()

	// services
	listingService := services.NewListingService(listingRepo, listingCache, listingValidator)
	searchService := services.NewListingSearchService(
		listingRepo, listingCache, listingValidator,
		a.Config.Listings.DefaultLimit, a.Config.Listings.MaxLimit)

	var descService *services.DescriptionService
	if a.Config.Describer.Enabled {
		client := describer.NewClient(a.Config.Describer.BaseURL, a.Config.Describer.APIKey, a.Config.Describer.Model)
		descService = services.NewDescriptionService(listingRepo, listingCache, client)
	}

	// handlers
	a.ListingHandler = handlers.NewListingHandler(listingService, searchService, descService)
}

// set up the Gin router with middleware and routes
func (a *App) initializeRouter() {
	a.Router = gin.New()
	a.setupMiddleware()
	a.setupRoutes()
}

// cleanup operations
func (a *App) cleanup() {
	database.CloseDB()
	cache.CloseRedis()
}
