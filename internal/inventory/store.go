package inventory

import (
	"context"
	"time"

	"lab-inventory-api-server/internal/models"
)

// ComponentFilter narrows catalog listings. Zero value lists everything.
type ComponentFilter struct {
	NameQuery string // case-insensitive substring match on name
	Tag       string // exact tag membership
	Category  string
	LowStock  bool // availableQuantity <= threshold
}

// RecordFilter narrows ledger listings. Zero value lists everything,
// newest first.
type RecordFilter struct {
	UserID      string
	ComponentID string
	Status      string
}

// RecordUpdate carries the fields a status transition writes. Nil pointer
// fields are left untouched.
type RecordUpdate struct {
	Status           string
	BorrowDate       *time.Time
	ActualReturnDate *time.Time
	Remarks          *string
}

// Store is the persistence contract the consistency core runs against.
// Implementations must make AdjustAvailable atomic with respect to
// concurrent callers targeting the same component: a decrement that would
// drive availableQuantity below zero fails with ErrInsufficientStock and
// leaves the document untouched, an increment is clamped at totalQuantity.
// TransitionRecord must likewise compare-and-swap the record's status: the
// update applies only while the record still holds fromStatus, otherwise it
// fails with ErrInvalidTransition and writes nothing, so concurrent
// transitions of one record serialize to a single winner.
type Store interface {
	InsertComponent(ctx context.Context, c *models.Component) error
	GetComponent(ctx context.Context, componentID string) (*models.Component, error)
	ListComponents(ctx context.Context, f ComponentFilter) ([]models.Component, error)
	SaveComponent(ctx context.Context, c *models.Component) error
	DeleteComponent(ctx context.Context, componentID string) error
	AdjustAvailable(ctx context.Context, componentID string, delta int) (*models.Component, error)

	InsertRecord(ctx context.Context, r *models.BorrowingRecord) error
	GetRecord(ctx context.Context, recordID string) (*models.BorrowingRecord, error)
	ListRecords(ctx context.Context, f RecordFilter) ([]models.BorrowingRecord, error)
	TransitionRecord(ctx context.Context, recordID, fromStatus string, set RecordUpdate) (*models.BorrowingRecord, error)

	InsertProcurementRequest(ctx context.Context, p *models.ProcurementRequest) error
	ListProcurementRequests(ctx context.Context, status string) ([]models.ProcurementRequest, error)
}
