package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/campuspool-backend/internal/engine"
)

// respondEngineError maps the engine's error taxonomy to HTTP responses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrForbidden):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidOperation):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInsufficientCapacity):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidInput):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
