package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loganomaly/rcaservice/internal/repository"
	"github.com/loganomaly/rcaservice/internal/services"
)

type RCAController struct {
	service *services.RCAQueryService
}

func NewRCAController(service *services.RCAQueryService) *RCAController {
	return &RCAController{service: service}
}

// GetRCAResults returns all RCA records, most recent first, each enriched
// with a generated explanation.
func (rc *RCAController) GetRCAResults(c *gin.Context) {
	results, err := rc.service.FetchAllWithExplanations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rca results found"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetLatestRCAResult returns the single most recent RCA record.
func (rc *RCAController) GetLatestRCAResult(c *gin.Context) {
	result, err := rc.service.FetchLatest(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoResults) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no rca results found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
