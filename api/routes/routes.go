package routes

import (
	"github.com/congdat192/LuckySpin-sub000/internal/config"
	"github.com/congdat192/LuckySpin-sub000/internal/handlers"
	"github.com/congdat192/LuckySpin-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler  *handlers.AuthHandler
	WheelHandler *handlers.WheelHandler
	EventHandler *handlers.EventHandler
	RuleHandler  *handlers.RuleHandler
	PrizeHandler *handlers.PrizeHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Customer wheel routes
		wheel := public.Group("/wheel")
		{
			wheel.POST("/validate", deps.WheelHandler.Validate)
			wheel.POST("/spin", deps.WheelHandler.Spin)
			wheel.GET("/sessions/:id", deps.WheelHandler.GetSession)
		}
	}

	// Protected admin routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/auth/register", deps.AuthHandler.Register)

		events := protected.Group("/events")
		{
			events.GET("", deps.EventHandler.ListEvents)
			events.GET("/:id", deps.EventHandler.GetEvent)
			events.POST("", deps.EventHandler.CreateEvent)
			events.PUT("/:id", deps.EventHandler.UpdateEvent)
			events.POST("/:id/deactivate", deps.EventHandler.DeactivateEvent)
			events.GET("/:id/rules", deps.RuleHandler.GetRulesByEvent)
			events.GET("/:id/prizes", deps.PrizeHandler.GetPrizesByEvent)
			events.GET("/:id/inventory/:branch", deps.PrizeHandler.GetBranchInventory)
		}

		rules := protected.Group("/rules")
		{
			rules.POST("", deps.RuleHandler.CreateRule)
			rules.PUT("/:id", deps.RuleHandler.UpdateRule)
			rules.DELETE("/:id", deps.RuleHandler.DeleteRule)
		}

		prizes := protected.Group("/prizes")
		{
			prizes.POST("", deps.PrizeHandler.CreatePrize)
			prizes.PUT("/:id", deps.PrizeHandler.UpdatePrize)
			prizes.DELETE("/:id", deps.PrizeHandler.DeletePrize)
		}

		protected.PUT("/inventory", deps.PrizeHandler.SetBranchInventory)
	}

	return router
}
