package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/auth"
	"ongelEstate/internal/database"
	"ongelEstate/internal/mailer"
)

// RegisterRoutes wires every handler under the /api prefix. Public site
// endpoints carry no middleware; back-office groups run the bearer check and,
// where noted, the admin gate.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *auth.AuthService,
	limiter auth.LoginLimiter,
	storageClient ObjectStore,
	asynqClient TaskEnqueuer,
	scanner UploadScanner,
	sender mailer.Sender,
) {
	authHandler := NewAuthHandler(db, authService, limiter)
	userHandler := NewUserHandler(db)
	listingHandler := NewListingHandler(db, storageClient, asynqClient, scanner)
	leadHandler := NewLeadHandler(db)
	blogHandler := NewBlogHandler(db)
	cmsHandler := NewCmsHandler(db)
	navHandler := NewNavigationHandler(db)
	footerHandler := NewFooterHandler(db)
	contactHandler := NewContactHandler(db, sender)

	authMiddleware := middleware.AuthMiddleware(authService)
	adminOnly := middleware.RequireRoles(database.RoleAdmin)

	apiGroup := router.Group("/api")
	{
		// Public site surface.
		apiGroup.GET("/listings/public", listingHandler.FindPublic)
		apiGroup.GET("/listings/public/:id", listingHandler.FindOnePublic)
		apiGroup.GET("/blog/public", blogHandler.FindPublished)
		apiGroup.GET("/blog/public/slug/:slug", blogHandler.FindBySlug)
		apiGroup.GET("/cms/pages/type/:type", cmsHandler.FindByType)
		apiGroup.GET("/navigation/public", navHandler.FindPublic)
		apiGroup.GET("/footer/links", footerHandler.FindPublic)
		apiGroup.POST("/contact", contactHandler.Submit)
		apiGroup.POST("/users/init-admin", userHandler.InitAdmin)

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/profile", authMiddleware, authHandler.Profile)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		listings := apiGroup.Group("/listings")
		listings.Use(authMiddleware)
		{
			listings.GET("", listingHandler.FindAll)
			listings.POST("", listingHandler.Create)
			listings.GET("/:id", listingHandler.FindOne)
			listings.PATCH("/:id", listingHandler.Update)
			listings.DELETE("/:id", listingHandler.Delete)
			listings.POST("/:id/images", listingHandler.UploadImages)
			listings.DELETE("/:id/images/:imageId", listingHandler.DeleteImage)
		}

		leads := apiGroup.Group("/leads")
		leads.Use(authMiddleware)
		{
			leads.GET("", leadHandler.FindAll)
			leads.POST("", leadHandler.Create)
			leads.GET("/:id", leadHandler.FindOne)
			leads.PATCH("/:id", leadHandler.Update)
			leads.DELETE("/:id", leadHandler.Delete)
			leads.POST("/:id/notes", leadHandler.AddNote)
			leads.DELETE("/notes/:noteId", leadHandler.DeleteNote)
		}

		blog := apiGroup.Group("/blog")
		blog.Use(authMiddleware, adminOnly)
		{
			blog.GET("", blogHandler.FindAll)
			blog.POST("", blogHandler.Create)
			blog.GET("/:id", blogHandler.FindOne)
			blog.PATCH("/:id", blogHandler.Update)
			blog.DELETE("/:id", blogHandler.Delete)
		}

		cms := apiGroup.Group("/cms/pages")
		cms.Use(authMiddleware, adminOnly)
		{
			cms.GET("", cmsHandler.FindAll)
			cms.GET("/:type", cmsHandler.FindByType)
			cms.PUT("/:type", cmsHandler.Upsert)
		}

		navigation := apiGroup.Group("/navigation")
		navigation.Use(authMiddleware, adminOnly)
		{
			navigation.GET("", navHandler.FindAll)
			navigation.POST("", navHandler.Create)
			navigation.PATCH("/reorder", navHandler.Reorder)
			navigation.PATCH("/:id", navHandler.Update)
			navigation.DELETE("/:id", navHandler.Delete)
		}

		footer := apiGroup.Group("/footer/links")
		footer.Use(authMiddleware, adminOnly)
		{
			footer.GET("/admin", footerHandler.FindAll)
			footer.POST("", footerHandler.Create)
			footer.PATCH("/reorder", footerHandler.Reorder)
			footer.PATCH("/:id", footerHandler.Update)
			footer.DELETE("/:id", footerHandler.Delete)
		}

		users := apiGroup.Group("/users")
		users.Use(authMiddleware)
		{
			users.GET("/agents", userHandler.FindAgents)

			admin := users.Group("")
			admin.Use(adminOnly)
			{
				admin.GET("", userHandler.FindAll)
				admin.POST("", userHandler.Create)
				admin.GET("/:id", userHandler.FindOne)
				admin.PATCH("/:id", userHandler.Update)
				admin.DELETE("/:id", userHandler.Delete)
			}
		}
	}
}
