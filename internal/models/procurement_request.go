package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Procurement priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Procurement request states.
const (
	ProcurementPending   = "PENDING"
	ProcurementApproved  = "APPROVED"
	ProcurementOrdered   = "ORDERED"
	ProcurementReceived  = "RECEIVED"
	ProcurementCancelled = "CANCELLED"
)

// ProcurementRequest is a manually created reorder request. Synthetic
// low-stock suggestions are computed on read and never stored here.
type ProcurementRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID   string             `bson:"requestId" json:"requestId"`
	ItemName    string             `bson:"itemName" json:"itemName"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Priority    string             `bson:"priority" json:"priority"`
	Status      string             `bson:"status" json:"status"`
	ComponentID string             `bson:"componentId,omitempty" json:"componentId,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	RequestedBy string             `bson:"requestedBy" json:"requestedBy"`
	Remarks     string             `bson:"remarks" json:"remarks"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidPriority reports whether s is one of HIGH, MEDIUM or LOW.
func ValidPriority(s string) bool {
	switch s {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
