package inventory

import (
	"context"
	"fmt"
	"strings"

	"lab-inventory-api-server/internal/models"

	"github.com/rs/zerolog/log"
)

// reorderBuffer is added on top of the threshold gap when suggesting a
// reorder quantity, so a restock lands comfortably above the threshold.
const reorderBuffer = 5

// ProcurementItem is one row of the merged advisory view: either a persisted
// manual request or a synthetic low-stock suggestion computed on read.
type ProcurementItem struct {
	RequestID     string `json:"requestId,omitempty"`
	ComponentID   string `json:"componentId,omitempty"`
	ItemName      string `json:"itemName"`
	Quantity      int    `json:"quantity"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	RequestedBy   string `json:"requestedBy,omitempty"`
	AutoGenerated bool   `json:"isAutoGenerated"`
}

// ListSuggestions merges pending manual requests with synthetic suggestions
// for every low-stock component. A manual request that references a
// componentId suppresses the synthetic entry for that component.
func (s *Service) ListSuggestions(ctx context.Context) ([]ProcurementItem, error) {
	manual, err := s.store.ListProcurementRequests(ctx, models.ProcurementPending)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.store.ListComponents(ctx, ComponentFilter{LowStock: true})
	if err != nil {
		return nil, err
	}

	covered := map[string]bool{}
	items := make([]ProcurementItem, 0, len(manual)+len(lowStock))
	for _, req := range manual {
		if req.ComponentID != "" {
			covered[req.ComponentID] = true
		}
		items = append(items, ProcurementItem{
			RequestID:   req.RequestID,
			ComponentID: req.ComponentID,
			ItemName:    req.ItemName,
			Quantity:    req.Quantity,
			Priority:    req.Priority,
			Status:      req.Status,
			Category:    req.Category,
			Description: req.Description,
			Remarks:     req.Remarks,
			RequestedBy: req.RequestedBy,
		})
	}

	for _, comp := range lowStock {
		if covered[comp.ComponentID] {
			continue
		}
		qty := comp.Threshold - comp.AvailableQuantity + reorderBuffer
		if qty < 1 {
			qty = 1
		}
		priority := models.PriorityMedium
		if comp.AvailableQuantity <= 2 {
			priority = models.PriorityHigh
		}
		items = append(items, ProcurementItem{
			ComponentID:   comp.ComponentID,
			ItemName:      comp.Name,
			Quantity:      qty,
			Priority:      priority,
			Status:        models.ProcurementPending,
			Category:      comp.Category,
			AutoGenerated: true,
		})
	}
	return items, nil
}

type CreateProcurementInput struct {
	ItemName    string
	Quantity    int
	Priority    string
	ComponentID string
	Category    string
	Description string
	Remarks     string
	RequestedBy string
}

// CreateProcurementRequest persists a manual reorder request. Priority
// defaults to MEDIUM when absent or unrecognized.
func (s *Service) CreateProcurementRequest(ctx context.Context, in CreateProcurementInput) (*models.ProcurementRequest, error) {
	name := strings.TrimSpace(in.ItemName)
	if name == "" {
		return nil, fmt.Errorf("%w: itemName is required", ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	priority := strings.ToUpper(in.Priority)
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}
	requestedBy := in.RequestedBy
	if requestedBy == "" {
		requestedBy = "admin"
	}

	now := s.now()
	req := &models.ProcurementRequest{
		RequestID:   newID("REQ"),
		ItemName:    name,
		Quantity:    in.Quantity,
		Priority:    priority,
		Status:      models.ProcurementPending,
		ComponentID: in.ComponentID,
		Category:    in.Category,
		Description: in.Description,
		RequestedBy: requestedBy,
		Remarks:     in.Remarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertProcurementRequest(ctx, req); err != nil {
		return nil, err
	}
	log.Info().Str("requestId", req.RequestID).Str("itemName", req.ItemName).Msg("procurement request created")
	return req, nil
}
