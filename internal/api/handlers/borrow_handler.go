package handlers

import (
	"net/http"
	"strings"

	"lab-inventory-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
)

type BorrowHandler struct {
	Service *inventory.Service
}

type BorrowRequest struct {
	ComponentID        string `json:"componentId" binding:"required"`
	Quantity           int    `json:"quantity"`
	ExpectedReturnDate string `json:"expectedReturnDate" binding:"required"`
}

// Borrow files a borrow request for the authenticated user. The request is
// created pending; stock is reserved only when an admin approves it.
func (h *BorrowHandler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	expected, err := parseDate(req.ExpectedReturnDate)
	if err != nil || expected == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expectedReturnDate"})
		return
	}

	rec, err := h.Service.RequestBorrow(c.Request.Context(), inventory.BorrowInput{
		UserID:             c.GetString("user_id"),
		ComponentID:        req.ComponentID,
		Quantity:           req.Quantity,
		ExpectedReturnDate: *expected,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"recordId": rec.RecordID,
		"status":   rec.Status,
	})
}

// Return closes out a borrowed record and restores the component's stock.
func (h *BorrowHandler) Return(c *gin.Context) {
	rec, err := h.Service.ReturnComponent(c.Request.Context(), c.Param("recordId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recordId": rec.RecordID,
		"status":   rec.Status,
	})
}

// MyRecords lists the authenticated user's borrowing history, newest first.
func (h *BorrowHandler) MyRecords(c *gin.Context) {
	records, err := h.Service.ListRecords(c.Request.Context(), inventory.RecordFilter{
		UserID: c.GetString("user_id"),
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListRecords lists every borrowing record for the admin console, newest
// first, optionally filtered by status or user.
func (h *BorrowHandler) ListRecords(c *gin.Context) {
	records, err := h.Service.ListRecords(c.Request.Context(), inventory.RecordFilter{
		UserID: c.Query("userId"),
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Approve moves a pending request to borrowed and decrements stock. Stock is
// re-checked at approval time; it may have changed since the request was
// queued.
func (h *BorrowHandler) Approve(c *gin.Context) {
	rec, err := h.Service.ApproveRecord(c.Request.Context(), c.Param("recordId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type RejectRequest struct {
	Remarks string `json:"remarks"`
}

// Reject declines a pending request, recording the reason.
func (h *BorrowHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.Service.RejectRecord(c.Request.Context(), c.Param("recordId"), req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Recommendations ranks components by how many of the given tags they
// carry. Tags come as a comma separated query parameter.
func (h *BorrowHandler) Recommendations(c *gin.Context) {
	var tags []string
	for _, t := range strings.Split(c.Query("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	recs, err := h.Service.Recommend(c.Request.Context(), tags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// OverdueRecords lists currently overdue loans, most overdue first.
func (h *BorrowHandler) OverdueRecords(c *gin.Context) {
	overdue, err := h.Service.OverdueRecords(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overdue)
}
