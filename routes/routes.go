package routes

import (
	"nutrition-tracker/controllers"
	"nutrition-tracker/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every controller the router mounts.
type Handlers struct {
	Auth      *controllers.AuthController
	Barcode   *controllers.BarcodeController
	Food      *controllers.FoodController
	Meal      *controllers.MealController
	User      *controllers.UserController
	Image     *controllers.ImageController
	Realtime  *controllers.RealtimeController
	Health    *controllers.HealthController
	Analytics *controllers.AnalyticsController
}

func SetupRouter(h Handlers, auth middlewares.TokenAuthenticator, allowedOrigins []string) *gin.Engine {
	controllers.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Logger(), controllers.Recovery())
	r.MaxMultipartMemory = 12 << 20

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	// Public auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	protected := api.Group("")
	protected.Use(middlewares.AuthMiddleware(auth))
	{
		protected.PUT("/auth/password", h.Auth.ChangePassword)

		protected.GET("/barcode/:barcode", h.Barcode.Scan)

		foods := protected.Group("/foods")
		foods.GET("", h.Food.List)
		foods.POST("", h.Food.Create)
		foods.GET("/search", h.Food.Search)
		foods.GET("/barcode/:barcode", h.Food.GetByBarcode)
		foods.GET("/fdc/:fdcId", h.Food.ImportExternal)
		foods.GET("/:id", h.Food.Get)

		meals := protected.Group("/meals")
		meals.POST("", h.Meal.Create)
		meals.GET("/date/:date", h.Meal.ListByDate)
		meals.GET("/range", h.Meal.ListByRange)
		meals.GET("/summary/:date", h.Meal.DailySummary)
		meals.GET("/:id", h.Meal.Get)
		meals.DELETE("/:id", h.Meal.Delete)

		users := protected.Group("/users")
		users.GET("/profile", h.User.GetProfile)
		users.PUT("/profile", h.User.UpdateProfile)
		users.GET("/recommended-calories", h.User.RecommendedCalories)

		analytics := protected.Group("/analytics")
		analytics.GET("/summary", h.Analytics.GetAnalyticsSummary)
		analytics.GET("/weekly", h.Analytics.GetWeeklyOverview)

		protected.POST("/image/analyze", h.Image.Analyze)
		protected.GET("/ws", h.Realtime.MealEventsWS)
	}

	return r
}
