package handlers

import (
	"errors"
	"net/http"

	"lab-inventory-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps core errors onto HTTP statuses. Anything outside the
// taxonomy is a 500 with the detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrValidation),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrComponentInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
