package inventory

import (
	"context"
	"sort"
	"time"

	"lab-inventory-api-server/internal/models"
)

type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardStats is the aggregate view backing the admin dashboard.
type DashboardStats struct {
	TotalComponents     int             `json:"totalComponents"`
	AvailableComponents int             `json:"availableComponents"`
	ActiveBorrows       int             `json:"activeBorrows"`
	OverdueItems        int             `json:"overdueItems"`
	LowStockAlerts      int             `json:"lowStockAlerts"`
	EfficiencyRate      int             `json:"efficiencyRate"`
	CategoryData        []CategoryCount `json:"categoryData"`
}

// Dashboard aggregates catalog and ledger state. EfficiencyRate is the
// percentage of owned units currently on the shelf, 100 for an empty catalog.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	comps, err := s.store.ListComponents(ctx, ComponentFilter{})
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, RecordFilter{Status: models.StatusBorrowed})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalComponents: len(comps),
		ActiveBorrows:   len(records),
	}

	totalUnits := 0
	categories := map[string]int{}
	for _, c := range comps {
		stats.AvailableComponents += c.AvailableQuantity
		totalUnits += c.TotalQuantity
		if c.LowStock() {
			stats.LowStockAlerts++
		}
		name := c.Category
		if name == "" {
			name = "Other"
		}
		categories[name]++
	}

	now := s.now()
	for i := range records {
		if records[i].IsOverdue(now) {
			stats.OverdueItems++
		}
	}

	if totalUnits > 0 {
		stats.EfficiencyRate = int(float64(stats.AvailableComponents)/float64(totalUnits)*100 + 0.5)
	} else {
		stats.EfficiencyRate = 100
	}

	stats.CategoryData = make([]CategoryCount, 0, len(categories))
	for name, count := range categories {
		stats.CategoryData = append(stats.CategoryData, CategoryCount{Name: name, Value: count})
	}
	sort.Slice(stats.CategoryData, func(i, j int) bool {
		return stats.CategoryData[i].Name < stats.CategoryData[j].Name
	})
	return stats, nil
}

// OverdueRecords lists currently overdue loans, most overdue first.
func (s *Service) OverdueRecords(ctx context.Context) ([]models.BorrowingRecord, error) {
	records, err := s.store.ListRecords(ctx, RecordFilter{Status: models.StatusBorrowed})
	if err != nil {
		return nil, err
	}

	now := s.now()
	overdue := []models.BorrowingRecord{}
	for _, r := range records {
		if r.IsOverdue(now) {
			overdue = append(overdue, r)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].ExpectedReturnDate.Before(overdue[j].ExpectedReturnDate)
	})
	return overdue, nil
}

type OverdueItem struct {
	RecordID           string    `json:"recordId"`
	ComponentName      string    `json:"componentName"`
	UserID             string    `json:"userId"`
	ExpectedReturnDate time.Time `json:"expectedReturnDate"`
	DaysOverdue        int       `json:"daysOverdue"`
}

type ProcurementAlert struct {
	ComponentID       string `json:"componentId"`
	ComponentName     string `json:"componentName"`
	AvailableQuantity int    `json:"availableQuantity"`
	Threshold         int    `json:"threshold"`
	Category          string `json:"category"`
}

type UrgentActions struct {
	OverdueItems      []OverdueItem      `json:"overdueItems"`
	ProcurementAlerts []ProcurementAlert `json:"procurementAlerts"`
}

const urgentActionLimit = 5

// UrgentActions lists the most pressing overdue loans (longest overdue first)
// and the emptiest low-stock components, capped at five entries each.
func (s *Service) UrgentActions(ctx context.Context) (*UrgentActions, error) {
	records, err := s.store.ListRecords(ctx, RecordFilter{Status: models.StatusBorrowed})
	if err != nil {
		return nil, err
	}
	lowStock, err := s.store.ListComponents(ctx, ComponentFilter{LowStock: true})
	if err != nil {
		return nil, err
	}

	now := s.now()
	actions := &UrgentActions{
		OverdueItems:      []OverdueItem{},
		ProcurementAlerts: []ProcurementAlert{},
	}

	var overdue []models.BorrowingRecord
	for _, r := range records {
		if r.IsOverdue(now) {
			overdue = append(overdue, r)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].ExpectedReturnDate.Before(overdue[j].ExpectedReturnDate)
	})
	for i, r := range overdue {
		if i == urgentActionLimit {
			break
		}
		actions.OverdueItems = append(actions.OverdueItems, OverdueItem{
			RecordID:           r.RecordID,
			ComponentName:      r.ComponentName,
			UserID:             r.UserID,
			ExpectedReturnDate: r.ExpectedReturnDate,
			DaysOverdue:        r.DaysOverdue(now),
		})
	}

	sort.Slice(lowStock, func(i, j int) bool {
		return lowStock[i].AvailableQuantity < lowStock[j].AvailableQuantity
	})
	for i, c := range lowStock {
		if i == urgentActionLimit {
			break
		}
		actions.ProcurementAlerts = append(actions.ProcurementAlerts, ProcurementAlert{
			ComponentID:       c.ComponentID,
			ComponentName:     c.Name,
			AvailableQuantity: c.AvailableQuantity,
			Threshold:         c.Threshold,
			Category:          c.Category,
		})
	}
	return actions, nil
}
