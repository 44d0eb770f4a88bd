package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FareHandler   *handler.FareHandler
	TripHandler   *handler.TripHandler
	DriverHandler *handler.DriverHandler
	RiderHandler  *handler.RiderHandler
	WalletHandler *handler.WalletHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
	JWTSecret     string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.PrometheusMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check and metrics stay outside auth.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Registration happens before the actor holds a token.
	router.POST("/v1/drivers/register", deps.DriverHandler.Register)
	router.POST("/v1/riders/register", deps.RiderHandler.Register)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(deps.JWTSecret))
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		v1.POST("/fare", deps.FareHandler.Quote)

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("/current", deps.TripHandler.Current)
			trips.GET("/last", deps.TripHandler.Last)
			trips.POST("/cancel", deps.TripHandler.CancelByRider)
			trips.POST("/review", deps.TripHandler.Review)
			trips.POST("/expire", deps.TripHandler.Expire)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("/:id/accept", deps.TripHandler.Accept)
			trips.POST("/:id/arrived", deps.TripHandler.Arrived)
			trips.POST("/:id/started", deps.TripHandler.Started)
			trips.POST("/:id/finish", deps.TripHandler.Finish)
			trips.POST("/:id/cancel", deps.TripHandler.CancelByDriver)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/status", deps.DriverHandler.UpdateStatus)
		}

		// Rider routes.
		v1.GET("/riders/:id", deps.RiderHandler.Get)

		// Wallet routes.
		wallets := v1.Group("/wallets")
		{
			wallets.GET("", deps.WalletHandler.List)
			wallets.POST("/recharge", deps.WalletHandler.Recharge)
			wallets.GET("/:id/transactions", deps.WalletHandler.Transactions)
		}
	}

	return router
}
