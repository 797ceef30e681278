package routes

import (
	"zvaintel/internal/controllers"
	"zvaintel/internal/logger"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Registry  *controllers.RegistryController
	Vendors   *controllers.VendorController
	Suppliers *controllers.SupplierController
}

// SetupRouter wires the controllers to the API routes
func SetupRouter(ctrl Controllers) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestID(), logger.Logger(), logger.Recovery())

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	// Group API routes under /api/v1
	api := router.Group("/api/v1")
	{
		registry := api.Group("/registry")
		{
			registry.POST("/extract", ctrl.Registry.Extract)
			registry.GET("/records", ctrl.Registry.ListRecords)
			registry.GET("/export.csv", ctrl.Registry.ExportCSV)
			registry.GET("/export.xlsx", ctrl.Registry.ExportXLSX)
		}

		vendors := api.Group("/vendors")
		{
			vendors.POST("/research", ctrl.Vendors.Research)
			vendors.GET("/search", ctrl.Vendors.Search)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("/match", ctrl.Suppliers.Match)
		}
	}

	return router
}
