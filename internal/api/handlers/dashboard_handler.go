package handlers

import (
	"net/http"

	"lab-inventory-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Service *inventory.Service
}

// Stats returns the aggregate numbers backing the admin dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UrgentActions returns the top overdue loans and low-stock components.
func (h *DashboardHandler) UrgentActions(c *gin.Context) {
	actions, err := h.Service.UrgentActions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}
