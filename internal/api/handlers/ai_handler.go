package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lab-inventory-api-server/internal/ai"
	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/models"
	"lab-inventory-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxScanImageBytes = 10 << 20 // 10 MiB

type AIHandler struct {
	Service  *inventory.Service
	Gemini   *ai.Client
	Uploader *s3.Uploader
}

// Identify accepts a component photo and returns ranked candidate matches
// against the catalog. The image is archived to S3 when an uploader is
// configured.
func (h *AIHandler) Identify(c *gin.Context) {
	if h.Gemini == nil || !h.Gemini.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image identification is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxScanImageBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	if len(image) > maxScanImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10MB limit"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	var imageURL string
	if h.Uploader != nil {
		objectKey := fmt.Sprintf("scans/%s", uuid.New().String())
		imageURL, err = h.Uploader.UploadFile(c.Request.Context(), bytes.NewReader(image), objectKey, mimeType)
		if err != nil {
			// The scan archive is best effort; identification still works.
			imageURL = ""
		}
	}

	comps, err := h.Service.ListComponents(c.Request.Context(), inventory.ComponentFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, 0, len(comps))
	for _, comp := range comps {
		names = append(names, comp.Name)
	}

	candidates, err := h.Gemini.IdentifyComponent(c.Request.Context(), image, mimeType, names)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identification failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imageUrl":   imageURL,
		"candidates": candidates,
	})
}

type ChatRequest struct {
	Query   string `json:"query"`
	Message string `json:"message"`
}

// Chat answers inventory questions with current catalog and ledger state as
// context.
func (h *AIHandler) Chat(c *gin.Context) {
	if h.Gemini == nil || !h.Gemini.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chatbot is not configured"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	question := req.Query
	if question == "" {
		question = req.Message
	}
	if strings.TrimSpace(question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A query is required"})
		return
	}

	inventoryContext, err := h.buildContext(c)
	if err != nil {
		respondError(c, err)
		return
	}

	reply, err := h.Gemini.Chat(c.Request.Context(), question, inventoryContext)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chatbot failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *AIHandler) buildContext(c *gin.Context) (string, error) {
	comps, err := h.Service.ListComponents(c.Request.Context(), inventory.ComponentFilter{})
	if err != nil {
		return "", err
	}
	active, err := h.Service.ListRecords(c.Request.Context(), inventory.RecordFilter{Status: models.StatusBorrowed})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Components (name | category | available/total | threshold):\n")
	for _, comp := range comps {
		fmt.Fprintf(&b, "- %s | %s | %d/%d | %d\n",
			comp.Name, comp.Category, comp.AvailableQuantity, comp.TotalQuantity, comp.Threshold)
	}
	fmt.Fprintf(&b, "Active borrows: %d\n", len(active))
	for _, rec := range active {
		fmt.Fprintf(&b, "- %s x%d borrowed by %s, due %s\n",
			rec.ComponentName, rec.Quantity, rec.UserID, rec.ExpectedReturnDate.Format("2006-01-02"))
	}
	return b.String(), nil
}
