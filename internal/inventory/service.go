package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"lab-inventory-api-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier receives inventory events worth pushing to connected admins.
// Implementations must not block.
type Notifier interface {
	BorrowRequested(rec models.BorrowingRecord)
	LowStock(comp models.Component)
}

// Service implements the catalog, ledger and consistency rules on top of a
// Store. The borrow workflow is pending-first: a request reserves nothing,
// approval re-validates stock and decrements it atomically.
type Service struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetNotifier attaches an event sink. Optional; nil means events are dropped.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// SetClock overrides the service clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

// --- Catalog ---

type CreateComponentInput struct {
	Name          string
	Category      string
	Description   string
	TotalQuantity int
	Threshold     *int
	Tags          []string
	DatasheetLink string
	PurchaseDate  *time.Time
	Condition     string
	Remarks       string
}

const defaultThreshold = 5

func (s *Service) CreateComponent(ctx context.Context, in CreateComponentInput) (*models.Component, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrValidation)
	}
	if in.TotalQuantity < 0 {
		return nil, fmt.Errorf("%w: totalQuantity must not be negative", ErrValidation)
	}
	condition := in.Condition
	if condition == "" {
		condition = models.ConditionGood
	}
	if !models.ValidCondition(condition) {
		return nil, fmt.Errorf("%w: unknown condition %q", ErrValidation, in.Condition)
	}
	threshold := defaultThreshold
	if in.Threshold != nil {
		if *in.Threshold < 0 {
			return nil, fmt.Errorf("%w: threshold must not be negative", ErrValidation)
		}
		threshold = *in.Threshold
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now()
	comp := &models.Component{
		ComponentID:       newID("COMP"),
		Name:              name,
		Category:          category,
		Description:       in.Description,
		TotalQuantity:     in.TotalQuantity,
		AvailableQuantity: in.TotalQuantity,
		Threshold:         threshold,
		Tags:              tags,
		DatasheetLink:     in.DatasheetLink,
		PurchaseDate:      in.PurchaseDate,
		Condition:         condition,
		Remarks:           in.Remarks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.InsertComponent(ctx, comp); err != nil {
		return nil, err
	}
	log.Info().Str("componentId", comp.ComponentID).Str("name", comp.Name).Msg("component created")
	return comp, nil
}

func (s *Service) GetComponent(ctx context.Context, componentID string) (*models.Component, error) {
	return s.store.GetComponent(ctx, componentID)
}

func (s *Service) ListComponents(ctx context.Context, f ComponentFilter) ([]models.Component, error) {
	return s.store.ListComponents(ctx, f)
}

type UpdateComponentInput struct {
	Name              *string
	Category          *string
	Description       *string
	TotalQuantity     *int
	AvailableQuantity *int
	Threshold         *int
	Tags              *[]string
	DatasheetLink     *string
	PurchaseDate      *time.Time
	Condition         *string
	Remarks           *string
}

// UpdateComponent applies a partial edit. When totalQuantity changes the
// available quantity is rescaled proportionally so the fraction on loan
// survives inventory recounts. A direct availableQuantity write that would
// leave [0, totalQuantity] is silently dropped, matching the admin-edit
// contract.
func (s *Service) UpdateComponent(ctx context.Context, componentID string, in UpdateComponentInput) (*models.Component, error) {
	comp, err := s.store.GetComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		comp.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		comp.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		comp.Description = *in.Description
	}
	if in.Tags != nil {
		comp.Tags = *in.Tags
	}
	if in.TotalQuantity != nil && *in.TotalQuantity >= 0 {
		oldTotal := comp.TotalQuantity
		if oldTotal == 0 {
			oldTotal = 1
		}
		ratio := float64(*in.TotalQuantity) / float64(oldTotal)
		comp.TotalQuantity = *in.TotalQuantity
		comp.AvailableQuantity = int(math.Round(float64(comp.AvailableQuantity) * ratio))
		if comp.AvailableQuantity > comp.TotalQuantity {
			comp.AvailableQuantity = comp.TotalQuantity
		}
	}
	if in.AvailableQuantity != nil {
		if v := *in.AvailableQuantity; v >= 0 && v <= comp.TotalQuantity {
			comp.AvailableQuantity = v
		}
	}
	if in.Threshold != nil && *in.Threshold >= 0 {
		comp.Threshold = *in.Threshold
	}
	if in.Condition != nil {
		if !models.ValidCondition(*in.Condition) {
			return nil, fmt.Errorf("%w: unknown condition %q", ErrValidation, *in.Condition)
		}
		comp.Condition = *in.Condition
	}
	if in.DatasheetLink != nil {
		comp.DatasheetLink = *in.DatasheetLink
	}
	if in.Remarks != nil {
		comp.Remarks = *in.Remarks
	}
	if in.PurchaseDate != nil {
		comp.PurchaseDate = in.PurchaseDate
	}
	comp.UpdatedAt = s.now()

	if err := s.store.SaveComponent(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// DeleteComponent removes a catalog entry. Deletion is refused while
// borrowed records still reference the component, otherwise a return would
// have no restock target.
func (s *Service) DeleteComponent(ctx context.Context, componentID string) error {
	outstanding, err := s.store.ListRecords(ctx, RecordFilter{
		ComponentID: componentID,
		Status:      models.StatusBorrowed,
	})
	if err != nil {
		return err
	}
	if len(outstanding) > 0 {
		return fmt.Errorf("%w: %d active borrow(s)", ErrComponentInUse, len(outstanding))
	}
	return s.store.DeleteComponent(ctx, componentID)
}

// ListTags returns the distinct tags across the catalog, sorted.
func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	comps, err := s.store.ListComponents(ctx, ComponentFilter{})
	if err != nil {
		return nil, err
	}
	return distinct(comps, func(c models.Component) []string { return c.Tags }), nil
}

// ListCategories returns the distinct categories across the catalog, sorted.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	comps, err := s.store.ListComponents(ctx, ComponentFilter{})
	if err != nil {
		return nil, err
	}
	return distinct(comps, func(c models.Component) []string { return []string{c.Category} }), nil
}

// --- Borrow workflow ---

type BorrowInput struct {
	UserID             string
	ComponentID        string
	Quantity           int
	ExpectedReturnDate time.Time
}

// RequestBorrow validates stock and creates a pending ledger entry. Nothing
// is reserved until an admin approves the request.
func (s *Service) RequestBorrow(ctx context.Context, in BorrowInput) (*models.BorrowingRecord, error) {
	if in.UserID == "" || in.ComponentID == "" {
		return nil, fmt.Errorf("%w: userId and componentId are required", ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if in.ExpectedReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: expectedReturnDate is required", ErrValidation)
	}

	comp, err := s.store.GetComponent(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	if comp.AvailableQuantity < in.Quantity {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, in.Quantity, comp.AvailableQuantity)
	}

	rec := &models.BorrowingRecord{
		RecordID:           newID("REC"),
		UserID:             in.UserID,
		ComponentID:        comp.ComponentID,
		ComponentName:      comp.Name,
		Quantity:           in.Quantity,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Status:             models.StatusPending,
		CreatedAt:          s.now(),
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil {
		return nil, err
	}
	log.Info().Str("recordId", rec.RecordID).Str("componentId", rec.ComponentID).
		Int("quantity", rec.Quantity).Msg("borrow request created")
	if s.notifier != nil {
		s.notifier.BorrowRequested(*rec)
	}
	return rec, nil
}

// ApproveRecord re-validates stock at approval time and decrements it
// atomically; a concurrent approval that would overdraw the component fails
// with ErrInsufficientStock instead. The pending->borrowed flip is a
// compare-and-swap in the store, so of several racers on one record exactly
// one keeps its decrement; the rest release theirs and fail.
func (s *Service) ApproveRecord(ctx context.Context, recordID string) (*models.BorrowingRecord, error) {
	rec, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot approve a %s record", ErrInvalidTransition, rec.Status)
	}
	componentID, qty := rec.ComponentID, rec.Quantity

	comp, err := s.store.AdjustAvailable(ctx, componentID, -qty)
	if err != nil {
		return nil, err
	}

	now := s.now()
	approved, err := s.store.TransitionRecord(ctx, recordID, models.StatusPending, RecordUpdate{
		Status:     models.StatusBorrowed,
		BorrowDate: &now,
	})
	if err != nil {
		// The record was claimed by a concurrent transition; give the
		// reserved units back.
		if _, rerr := s.store.AdjustAvailable(ctx, componentID, qty); rerr != nil {
			log.Error().Err(rerr).Str("componentId", componentID).Msg("failed to release stock after aborted approval")
		}
		return nil, err
	}

	log.Info().Str("recordId", approved.RecordID).Str("componentId", componentID).Msg("borrow approved")
	if s.notifier != nil && comp.LowStock() {
		s.notifier.LowStock(*comp)
	}
	return approved, nil
}

// RejectRecord declines a pending request. The catalog is untouched because
// pending requests never reserve stock. The compare-and-swap means a reject
// racing an approve of the same record loses cleanly instead of overwriting
// a borrowed record.
func (s *Service) RejectRecord(ctx context.Context, recordID, remarks string) (*models.BorrowingRecord, error) {
	rec, err := s.store.TransitionRecord(ctx, recordID, models.StatusPending, RecordUpdate{
		Status:  models.StatusRejected,
		Remarks: &remarks,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("recordId", rec.RecordID).Msg("borrow rejected")
	return rec, nil
}

// ReturnComponent moves a borrowed record to its terminal state and restores
// the component's available quantity, clamped at totalQuantity.
func (s *Service) ReturnComponent(ctx context.Context, recordID string) (*models.BorrowingRecord, error) {
	rec, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.StatusReturned {
		return nil, fmt.Errorf("%w: component already returned", ErrInvalidTransition)
	}
	if rec.Status != models.StatusBorrowed {
		return nil, fmt.Errorf("%w: cannot return a %s record", ErrInvalidTransition, rec.Status)
	}

	// Claim the record first; only the winner of a racing double return
	// reaches the restock below.
	now := s.now()
	rec, err = s.store.TransitionRecord(ctx, recordID, models.StatusBorrowed, RecordUpdate{
		Status:           models.StatusReturned,
		ActualReturnDate: &now,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AdjustAvailable(ctx, rec.ComponentID, rec.Quantity); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// Component was deleted after the loan ended; the snapshot on the
		// record is all that remains, and that is fine.
		log.Warn().Str("recordId", rec.RecordID).Str("componentId", rec.ComponentID).
			Msg("returned against a deleted component")
	}

	log.Info().Str("recordId", rec.RecordID).Str("componentId", rec.ComponentID).Msg("component returned")
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, recordID string) (*models.BorrowingRecord, error) {
	return s.store.GetRecord(ctx, recordID)
}

func (s *Service) ListRecords(ctx context.Context, f RecordFilter) ([]models.BorrowingRecord, error) {
	return s.store.ListRecords(ctx, f)
}

func distinct(comps []models.Component, pick func(models.Component) []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range comps {
		for _, v := range pick(c) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
