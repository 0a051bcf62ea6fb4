package routes

import (
	"pistol/controllers"
	"pistol/middleware"
	"pistol/services/profile"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB) {
	store := profile.NewStore(db)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/users/:username", controllers.GetUserPublicInfo(store))

	auth := api.Group("/auth")
	{
		auth.POST("/signup", controllers.SignUp(store))

		auth.POST("/login", controllers.Login(store))

		auth.POST("/logout", controllers.Logout)

		auth.GET("/me", controllers.Me(store))
	}

	// Routes that require authentication
	authenticated := auth.Group("/")
	authenticated.Use(middleware.AuthRequired)
	{
		authenticated.PUT("/profile", controllers.UpdateProfile(store))
	}
}
