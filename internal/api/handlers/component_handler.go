package handlers

import (
	"errors"
	"net/http"
	"time"

	"lab-inventory-api-server/internal/ai"
	"lab-inventory-api-server/internal/ingest"
	"lab-inventory-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
)

type ComponentHandler struct {
	Service *inventory.Service
	Gemini  *ai.Client
}

type CreateComponentRequest struct {
	Name          string   `json:"name" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Description   string   `json:"description"`
	TotalQuantity int      `json:"totalQuantity" binding:"min=0"`
	Threshold     *int     `json:"threshold"`
	Tags          []string `json:"tags"`
	DatasheetLink string   `json:"datasheetLink"`
	PurchaseDate  string   `json:"purchaseDate"`
	Condition     string   `json:"condition"`
	Remarks       string   `json:"remarks"`
}

// CreateComponent adds a catalog entry.
func (h *ComponentHandler) CreateComponent(c *gin.Context) {
	var req CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchaseDate, err := parseDate(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchaseDate"})
		return
	}

	comp, err := h.Service.CreateComponent(c.Request.Context(), inventory.CreateComponentInput{
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		TotalQuantity: req.TotalQuantity,
		Threshold:     req.Threshold,
		Tags:          req.Tags,
		DatasheetLink: req.DatasheetLink,
		PurchaseDate:  purchaseDate,
		Condition:     req.Condition,
		Remarks:       req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"componentId": comp.ComponentID})
}

// ListComponents returns catalog entries, optionally filtered by a
// case-insensitive name query, an exact tag, a category or low stock.
func (h *ComponentHandler) ListComponents(c *gin.Context) {
	filter := inventory.ComponentFilter{
		NameQuery: c.Query("q"),
		Tag:       c.Query("tag"),
		Category:  c.Query("category"),
		LowStock:  c.Query("lowStock") == "true",
	}
	if filter.NameQuery == "" {
		filter.NameQuery = c.Query("name")
	}

	comps, err := h.Service.ListComponents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comps)
}

// GetComponent returns one catalog entry with all metadata.
func (h *ComponentHandler) GetComponent(c *gin.Context) {
	comp, err := h.Service.GetComponent(c.Request.Context(), c.Param("componentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

type UpdateComponentRequest struct {
	Name              *string   `json:"name"`
	Category          *string   `json:"category"`
	Description       *string   `json:"description"`
	TotalQuantity     *int      `json:"totalQuantity"`
	AvailableQuantity *int      `json:"availableQuantity"`
	Threshold         *int      `json:"threshold"`
	Tags              *[]string `json:"tags"`
	DatasheetLink     *string   `json:"datasheetLink"`
	PurchaseDate      *string   `json:"purchaseDate"`
	Condition         *string   `json:"condition"`
	Remarks           *string   `json:"remarks"`
}

// UpdateComponent applies a partial edit to a catalog entry.
func (h *ComponentHandler) UpdateComponent(c *gin.Context) {
	var req UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := inventory.UpdateComponentInput{
		Name:              req.Name,
		Category:          req.Category,
		Description:       req.Description,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.AvailableQuantity,
		Threshold:         req.Threshold,
		Tags:              req.Tags,
		DatasheetLink:     req.DatasheetLink,
		Condition:         req.Condition,
		Remarks:           req.Remarks,
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := parseDate(*req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchaseDate"})
			return
		}
		in.PurchaseDate = purchaseDate
	}

	comp, err := h.Service.UpdateComponent(c.Request.Context(), c.Param("componentId"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// DeleteComponent removes a catalog entry unless active borrows reference it.
func (h *ComponentHandler) DeleteComponent(c *gin.Context) {
	if err := h.Service.DeleteComponent(c.Request.Context(), c.Param("componentId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ListTags returns every distinct tag in the catalog.
func (h *ComponentHandler) ListTags(c *gin.Context) {
	tags, err := h.Service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, tags)
}

// ListCategories returns every distinct category in the catalog.
func (h *ComponentHandler) ListCategories(c *gin.Context) {
	categories, err := h.Service.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// UploadComponents ingests a CSV file of components. Rows are created
// independently; the response reports per-row outcomes. When the AI client
// is configured the extracted rows are enriched first.
func (h *ComponentHandler) UploadComponents(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required"})
		return
	}
	defer file.Close()

	drafts, err := ingest.Parse(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse CSV file"})
		return
	}

	if h.Gemini != nil && h.Gemini.Enabled() {
		drafts = h.Gemini.EnrichComponents(c.Request.Context(), drafts)
	}

	report := ingest.Ingest(c.Request.Context(), h.Service, drafts)
	c.JSON(http.StatusOK, report)
}

var errInvalidDate = errors.New("invalid date")

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidDate
}
