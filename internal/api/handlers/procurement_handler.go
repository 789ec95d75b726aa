package handlers

import (
	"net/http"

	"lab-inventory-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
)

type ProcurementHandler struct {
	Service *inventory.Service
}

// ListSuggestions returns pending manual requests merged with synthetic
// low-stock suggestions. Synthetic entries are computed on every read and
// never persisted.
func (h *ProcurementHandler) ListSuggestions(c *gin.Context) {
	items, err := h.Service.ListSuggestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type CreateProcurementRequestPayload struct {
	ItemName    string `json:"itemName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Priority    string `json:"priority"`
	ComponentID string `json:"componentId"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
}

// CreateRequest files a manual procurement request.
func (h *ProcurementHandler) CreateRequest(c *gin.Context) {
	var payload CreateProcurementRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Service.CreateProcurementRequest(c.Request.Context(), inventory.CreateProcurementInput{
		ItemName:    payload.ItemName,
		Quantity:    payload.Quantity,
		Priority:    payload.Priority,
		ComponentID: payload.ComponentID,
		Category:    payload.Category,
		Description: payload.Description,
		Remarks:     payload.Remarks,
		RequestedBy: c.GetString("user_name"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}
