// Package memstore provides an in-memory inventory.Store. It backs the core
// service tests and is handy for local development without a MongoDB.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/models"
)

type Store struct {
	mu         sync.RWMutex
	components map[string]models.Component
	records    map[string]models.BorrowingRecord
	requests   map[string]models.ProcurementRequest
}

func New() *Store {
	return &Store{
		components: make(map[string]models.Component),
		records:    make(map[string]models.BorrowingRecord),
		requests:   make(map[string]models.ProcurementRequest),
	}
}

var _ inventory.Store = (*Store)(nil)

func (s *Store) InsertComponent(_ context.Context, c *models.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[c.ComponentID]; ok {
		return fmt.Errorf("%w: duplicate componentId %s", inventory.ErrValidation, c.ComponentID)
	}
	s.components[c.ComponentID] = *c
	return nil
}

func (s *Store) GetComponent(_ context.Context, componentID string) (*models.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
	}
	return &c, nil
}

func (s *Store) ListComponents(_ context.Context, f inventory.ComponentFilter) ([]models.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Component{}
	for _, c := range s.components {
		if f.NameQuery != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.NameQuery)) {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Tag != "" && !hasTag(c.Tags, f.Tag) {
			continue
		}
		if f.LowStock && !c.LowStock() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentID < out[j].ComponentID })
	return out, nil
}

func (s *Store) SaveComponent(_ context.Context, c *models.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[c.ComponentID]; !ok {
		return fmt.Errorf("%w: component %s", inventory.ErrNotFound, c.ComponentID)
	}
	s.components[c.ComponentID] = *c
	return nil
}

func (s *Store) DeleteComponent(_ context.Context, componentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[componentID]; !ok {
		return fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
	}
	delete(s.components, componentID)
	return nil
}

// AdjustAvailable performs the check-then-mutate under the store lock, so
// concurrent adjustments of the same component serialize here.
func (s *Store) AdjustAvailable(_ context.Context, componentID string, delta int) (*models.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.components[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
	}
	next := c.AvailableQuantity + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: available %d, delta %d", inventory.ErrInsufficientStock, c.AvailableQuantity, delta)
	}
	if next > c.TotalQuantity {
		next = c.TotalQuantity
	}
	c.AvailableQuantity = next
	s.components[componentID] = c
	return &c, nil
}

func (s *Store) InsertRecord(_ context.Context, r *models.BorrowingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.RecordID]; ok {
		return fmt.Errorf("%w: duplicate recordId %s", inventory.ErrValidation, r.RecordID)
	}
	s.records[r.RecordID] = *r
	return nil
}

func (s *Store) GetRecord(_ context.Context, recordID string) (*models.BorrowingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recordID]
	if !ok {
		return nil, fmt.Errorf("%w: record %s", inventory.ErrNotFound, recordID)
	}
	return &r, nil
}

func (s *Store) ListRecords(_ context.Context, f inventory.RecordFilter) ([]models.BorrowingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.BorrowingRecord{}
	for _, r := range s.records {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.ComponentID != "" && r.ComponentID != f.ComponentID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// TransitionRecord compare-and-swaps the record's status under the store
// lock, so concurrent transitions of one record serialize to a single winner.
func (s *Store) TransitionRecord(_ context.Context, recordID, fromStatus string, set inventory.RecordUpdate) (*models.BorrowingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordID]
	if !ok {
		return nil, fmt.Errorf("%w: record %s", inventory.ErrNotFound, recordID)
	}
	if r.Status != fromStatus {
		return nil, fmt.Errorf("%w: record %s is %s", inventory.ErrInvalidTransition, recordID, r.Status)
	}
	r.Status = set.Status
	if set.BorrowDate != nil {
		r.BorrowDate = set.BorrowDate
	}
	if set.ActualReturnDate != nil {
		r.ActualReturnDate = set.ActualReturnDate
	}
	if set.Remarks != nil {
		r.Remarks = *set.Remarks
	}
	s.records[recordID] = r
	return &r, nil
}

func (s *Store) InsertProcurementRequest(_ context.Context, p *models.ProcurementRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[p.RequestID]; ok {
		return fmt.Errorf("%w: duplicate requestId %s", inventory.ErrValidation, p.RequestID)
	}
	s.requests[p.RequestID] = *p
	return nil
}

func (s *Store) ListProcurementRequests(_ context.Context, status string) ([]models.ProcurementRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ProcurementRequest{}
	for _, p := range s.requests {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
