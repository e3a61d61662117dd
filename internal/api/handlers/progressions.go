package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmonia-api/internal/logger"
	"github.com/Conceptual-Machines/harmonia-api/pkg/embedded"
)

// ListProgressions returns the built-in practice progressions
// GET /api/v1/progressions?style=jazz
func ListProgressions(c *gin.Context) {
	progressions, err := embedded.FilterByStyle(c.Query("style"))
	if err != nil {
		logger.Error("Failed to load progressions", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progressions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progressions": progressions, "total": len(progressions)})
}
