package router

import (
	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/config"
	"github.com/drukmotors/dealership-backend/internal/app/controller"
	"github.com/drukmotors/dealership-backend/internal/app/model"
	"github.com/drukmotors/dealership-backend/internal/middleware"
)

type Router struct {
	authController        *controller.AuthController
	catalogController     *controller.CatalogController
	appointmentController *controller.AppointmentController
	adminController       *controller.AdminController
	managementController  *controller.ManagementController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	catalogController *controller.CatalogController,
	appointmentController *controller.AppointmentController,
	adminController *controller.AdminController,
	managementController *controller.ManagementController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		catalogController:     catalogController,
		appointmentController: appointmentController,
		adminController:       adminController,
		managementController:  managementController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "DRUK MOTORS API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		// Public storefront reads
		v1.GET("/parts", r.catalogController.GetParts)
		v1.GET("/categories", r.catalogController.GetCategories)
		v1.GET("/service-types", r.catalogController.GetServiceTypes)
		v1.GET("/success-stories", r.catalogController.GetSuccessStories)
		v1.GET("/employees", r.catalogController.GetEmployees)
		v1.GET("/announcement", r.catalogController.GetActiveAnnouncement)

		appointments := v1.Group("/appointments")
		appointments.Use(r.authMiddleware.Authenticate())
		{
			appointments.POST("", r.appointmentController.Book)
			appointments.GET("/my", r.appointmentController.MyAppointments)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/stats", r.adminController.GetStats)

			admin.POST("/announcements/publish", r.managementController.PublishAnnouncement)
			admin.POST("/announcements/clear", r.managementController.ClearAnnouncements)
			admin.PUT("/announcements/:id/text", r.managementController.UpdateAnnouncement)

			admin.POST("/content/parts", r.managementController.AddPart)
			admin.POST("/content/employees", r.managementController.CreateEmployee)
			admin.POST("/content/success-stories", r.managementController.CreateSuccessStory)

			admin.PUT("/appointments/:id/status", r.appointmentController.UpdateStatus)

			// Generic resource grid. Static siblings above take precedence
			// over the :resource wildcard.
			admin.GET("/:resource", r.adminController.GetList)
			admin.POST("/:resource", r.adminController.Create)
			admin.GET("/:resource/:id", r.adminController.GetOne)
			admin.PUT("/:resource/:id", r.adminController.Update)
			admin.DELETE("/:resource/:id", r.adminController.Delete)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
