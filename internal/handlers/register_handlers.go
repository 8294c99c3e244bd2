package handlers

import (
	"github.com/dgrad/efintrack/cmd/docs"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API v1 routes behind the actor header check
	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.RequireActor())

	registerAccountRoutes(v1, service.Account)
	registerRequestRoutes(v1, service.Request)
	registerStatementRoutes(v1, service.Statement, service.Cheque)
	registerPaymentRoutes(v1, service.Payment)
	registerReceiptRoutes(v1, service.Receipt)
	registerClosingRoutes(v1, service.Closing, service.Journal)
}

// RegisterSwaggerRoutes serves the API description and UI under /swagger.
// Callers keep it out of production.
func RegisterSwaggerRoutes(r *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
