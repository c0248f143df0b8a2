package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/loganomaly/rcaservice/internal/config"
	"github.com/loganomaly/rcaservice/internal/controllers"
	"github.com/loganomaly/rcaservice/internal/repository"
	"github.com/loganomaly/rcaservice/internal/services"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, db *gorm.DB, gen services.ExplanationGenerator, cfg config.Config) {
	// Initialize services
	store := repository.NewRcaRepository(db)
	rcaService := services.NewRCAQueryService(store, gen, cfg.Generation)

	// Initialize controllers
	rcaController := controllers.NewRCAController(rcaService)

	rca := r.Group("/rca")
	{
		rca.GET("/", rcaController.GetRCAResults)
		rca.GET("/latest", rcaController.GetLatestRCAResult)
	}
}
