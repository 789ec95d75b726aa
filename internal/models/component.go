package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Condition values a component can be recorded in.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// Component is a catalog entry for a loanable electronics item.
// AvailableQuantity must stay within [0, TotalQuantity] after every mutation.
type Component struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComponentID       string             `bson:"componentId" json:"componentId"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category" json:"category"`
	Description       string             `bson:"description" json:"description"`
	TotalQuantity     int                `bson:"totalQuantity" json:"totalQuantity"`
	AvailableQuantity int                `bson:"availableQuantity" json:"availableQuantity"`
	Threshold         int                `bson:"threshold" json:"threshold"`
	Tags              []string           `bson:"tags" json:"tags"`
	DatasheetLink     string             `bson:"datasheetLink" json:"datasheetLink"`
	PurchaseDate      *time.Time         `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
	Condition         string             `bson:"condition" json:"condition"`
	Remarks           string             `bson:"remarks" json:"remarks"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LowStock reports whether the component is at or below its reorder threshold.
func (c *Component) LowStock() bool {
	return c.AvailableQuantity <= c.Threshold
}

// ValidCondition reports whether s is one of the accepted condition values.
func ValidCondition(s string) bool {
	switch s {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
