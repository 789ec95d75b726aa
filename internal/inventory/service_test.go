package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/inventory/memstore"
	"lab-inventory-api-server/internal/models"
)

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*inventory.Service, *memstore.Store) {
	store := memstore.New()
	svc := inventory.NewService(store)
	svc.SetClock(func() time.Time { return testClock })
	return svc, store
}

func mustCreateComponent(t *testing.T, svc *inventory.Service, name string, total, threshold int) *models.Component {
	t.Helper()
	comp, err := svc.CreateComponent(context.Background(), inventory.CreateComponentInput{
		Name:          name,
		Category:      "Sensor",
		TotalQuantity: total,
		Threshold:     &threshold,
	})
	if err != nil {
		t.Fatalf("CreateComponent: %v", err)
	}
	return comp
}

func mustBorrow(t *testing.T, svc *inventory.Service, componentID string, qty int) *models.BorrowingRecord {
	t.Helper()
	rec, err := svc.RequestBorrow(context.Background(), inventory.BorrowInput{
		UserID:             "student-1",
		ComponentID:        componentID,
		Quantity:           qty,
		ExpectedReturnDate: testClock.AddDate(0, 0, 14),
	})
	if err != nil {
		t.Fatalf("RequestBorrow: %v", err)
	}
	return rec
}

func TestCreateComponentValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	testCases := []struct {
		name  string
		input inventory.CreateComponentInput
	}{
		{"missing name", inventory.CreateComponentInput{Category: "Sensor", TotalQuantity: 5}},
		{"missing category", inventory.CreateComponentInput{Name: "DHT22", TotalQuantity: 5}},
		{"blank name", inventory.CreateComponentInput{Name: "   ", Category: "Sensor"}},
		{"negative total", inventory.CreateComponentInput{Name: "DHT22", Category: "Sensor", TotalQuantity: -1}},
		{"unknown condition", inventory.CreateComponentInput{Name: "DHT22", Category: "Sensor", Condition: "broken"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateComponent(ctx, tc.input)
			if !errors.Is(err, inventory.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateComponentDefaults(t *testing.T) {
	svc, _ := newTestService()

	comp, err := svc.CreateComponent(context.Background(), inventory.CreateComponentInput{
		Name:          "Arduino Uno",
		Category:      "Microcontroller",
		TotalQuantity: 12,
	})
	if err != nil {
		t.Fatalf("CreateComponent: %v", err)
	}
	if comp.AvailableQuantity != 12 {
		t.Errorf("expected availableQuantity initialized to totalQuantity, got %d", comp.AvailableQuantity)
	}
	if comp.Threshold != 5 {
		t.Errorf("expected default threshold 5, got %d", comp.Threshold)
	}
	if comp.Condition != models.ConditionGood {
		t.Errorf("expected default condition good, got %s", comp.Condition)
	}
	if comp.ComponentID == "" {
		t.Error("expected a componentId to be assigned")
	}
}

func TestUpdateComponentRescalesAvailable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "ESP32", 10, 5)

	// Put 4 units on loan so available is 6.
	rec := mustBorrow(t, svc, comp.ComponentID, 4)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}

	newTotal := 20
	updated, err := svc.UpdateComponent(ctx, comp.ComponentID, inventory.UpdateComponentInput{
		TotalQuantity: &newTotal,
	})
	if err != nil {
		t.Fatalf("UpdateComponent: %v", err)
	}
	if updated.TotalQuantity != 20 {
		t.Errorf("expected totalQuantity 20, got %d", updated.TotalQuantity)
	}
	// round(6 * 20/10) = 12, the on-loan fraction is preserved.
	if updated.AvailableQuantity != 12 {
		t.Errorf("expected availableQuantity rescaled to 12, got %d", updated.AvailableQuantity)
	}
}

func TestUpdateComponentRejectsOutOfRangeAvailable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "ESP32", 10, 5)

	tooHigh := 11
	updated, err := svc.UpdateComponent(ctx, comp.ComponentID, inventory.UpdateComponentInput{
		AvailableQuantity: &tooHigh,
	})
	if err != nil {
		t.Fatalf("UpdateComponent: %v", err)
	}
	if updated.AvailableQuantity != 10 {
		t.Errorf("out-of-range availableQuantity should be dropped, got %d", updated.AvailableQuantity)
	}

	negative := -1
	updated, err = svc.UpdateComponent(ctx, comp.ComponentID, inventory.UpdateComponentInput{
		AvailableQuantity: &negative,
	})
	if err != nil {
		t.Fatalf("UpdateComponent: %v", err)
	}
	if updated.AvailableQuantity != 10 {
		t.Errorf("negative availableQuantity should be dropped, got %d", updated.AvailableQuantity)
	}
}

func TestUpdateComponentNotFound(t *testing.T) {
	svc, _ := newTestService()
	name := "renamed"
	_, err := svc.UpdateComponent(context.Background(), "COMP-MISSING", inventory.UpdateComponentInput{Name: &name})
	if !errors.Is(err, inventory.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBorrowWorkflow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Raspberry Pi 4", 10, 5)

	rec := mustBorrow(t, svc, comp.ComponentID, 3)
	if rec.Status != models.StatusPending {
		t.Fatalf("expected pending record, got %s", rec.Status)
	}
	if rec.ComponentName != "Raspberry Pi 4" {
		t.Errorf("expected componentName snapshot, got %q", rec.ComponentName)
	}

	// A pending request reserves nothing.
	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 10 {
		t.Fatalf("pending request must not change stock, got %d", got.AvailableQuantity)
	}

	approved, err := svc.ApproveRecord(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}
	if approved.Status != models.StatusBorrowed {
		t.Errorf("expected borrowed, got %s", approved.Status)
	}
	if approved.BorrowDate == nil || !approved.BorrowDate.Equal(testClock) {
		t.Errorf("expected borrowDate set to approval time, got %v", approved.BorrowDate)
	}
	got, _ = svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 7 {
		t.Fatalf("expected availableQuantity 7 after approval, got %d", got.AvailableQuantity)
	}

	returned, err := svc.ReturnComponent(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("ReturnComponent: %v", err)
	}
	if returned.Status != models.StatusReturned {
		t.Errorf("expected returned, got %s", returned.Status)
	}
	if returned.ActualReturnDate == nil {
		t.Error("expected actualReturnDate to be set")
	}
	got, _ = svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 10 {
		t.Fatalf("expected availableQuantity restored to 10, got %d", got.AvailableQuantity)
	}
}

func TestBorrowInsufficientStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "LoRa Module", 2, 1)

	_, err := svc.RequestBorrow(ctx, inventory.BorrowInput{
		UserID:             "student-1",
		ComponentID:        comp.ComponentID,
		Quantity:           3,
		ExpectedReturnDate: testClock.AddDate(0, 0, 7),
	})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// No record must exist and stock must be untouched.
	records, _ := svc.ListRecords(ctx, inventory.RecordFilter{})
	if len(records) != 0 {
		t.Errorf("expected no ledger entry, got %d", len(records))
	}
	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 2 {
		t.Errorf("expected availableQuantity 2, got %d", got.AvailableQuantity)
	}
}

func TestBorrowValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Servo", 5, 2)

	testCases := []struct {
		name  string
		input inventory.BorrowInput
	}{
		{"zero quantity", inventory.BorrowInput{UserID: "u1", ComponentID: comp.ComponentID, Quantity: 0, ExpectedReturnDate: testClock}},
		{"missing user", inventory.BorrowInput{ComponentID: comp.ComponentID, Quantity: 1, ExpectedReturnDate: testClock}},
		{"missing return date", inventory.BorrowInput{UserID: "u1", ComponentID: comp.ComponentID, Quantity: 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RequestBorrow(ctx, tc.input)
			if !errors.Is(err, inventory.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestApproveRechecksStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "OLED Display", 10, 5)

	// Queue a request for 2 while stock is plentiful.
	queued := mustBorrow(t, svc, comp.ComponentID, 2)

	// Another loan drains the stock to 1 before the queued request is seen.
	drain := mustBorrow(t, svc, comp.ComponentID, 9)
	if _, err := svc.ApproveRecord(ctx, drain.RecordID); err != nil {
		t.Fatalf("ApproveRecord(drain): %v", err)
	}

	_, err := svc.ApproveRecord(ctx, queued.RecordID)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock at approval time, got %v", err)
	}

	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 1 {
		t.Errorf("failed approval must not change stock, got %d", got.AvailableQuantity)
	}
	rec, _ := svc.GetRecord(ctx, queued.RecordID)
	if rec.Status != models.StatusPending {
		t.Errorf("failed approval must leave the record pending, got %s", rec.Status)
	}
}

func TestApproveRejectRequirePending(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Multimeter", 5, 2)

	rec := mustBorrow(t, svc, comp.ComponentID, 1)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}

	if _, err := svc.ApproveRecord(ctx, rec.RecordID); !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Errorf("approve on borrowed record: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.RejectRecord(ctx, rec.RecordID, "no"); !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Errorf("reject on borrowed record: expected ErrInvalidTransition, got %v", err)
	}

	// Terminal states are final.
	if _, err := svc.ReturnComponent(ctx, rec.RecordID); err != nil {
		t.Fatalf("ReturnComponent: %v", err)
	}
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Errorf("approve on returned record: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.RejectRecord(ctx, rec.RecordID, "no"); !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Errorf("reject on returned record: expected ErrInvalidTransition, got %v", err)
	}
}

func TestRejectLeavesCatalogUntouched(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Soldering Iron", 4, 1)

	rec := mustBorrow(t, svc, comp.ComponentID, 2)
	rejected, err := svc.RejectRecord(ctx, rec.RecordID, "term project only")
	if err != nil {
		t.Fatalf("RejectRecord: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("expected rejected, got %s", rejected.Status)
	}
	if rejected.Remarks != "term project only" {
		t.Errorf("expected remarks stored, got %q", rejected.Remarks)
	}

	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 4 {
		t.Errorf("reject must not change stock, got %d", got.AvailableQuantity)
	}

	// A rejected record cannot be returned.
	if _, err := svc.ReturnComponent(ctx, rec.RecordID); !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReturnTwiceFails(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Logic Analyzer", 3, 1)

	rec := mustBorrow(t, svc, comp.ComponentID, 1)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}
	if _, err := svc.ReturnComponent(ctx, rec.RecordID); err != nil {
		t.Fatalf("ReturnComponent: %v", err)
	}

	_, err := svc.ReturnComponent(ctx, rec.RecordID)
	if !errors.Is(err, inventory.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second return, got %v", err)
	}
	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 3 {
		t.Errorf("second return must not change stock, got %d", got.AvailableQuantity)
	}
}

func TestReturnClampedAtTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Breadboard", 10, 2)

	rec := mustBorrow(t, svc, comp.ComponentID, 3)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}

	// An admin recount puts the shelf back at 10 while the loan is out.
	full := 10
	if _, err := svc.UpdateComponent(ctx, comp.ComponentID, inventory.UpdateComponentInput{AvailableQuantity: &full}); err != nil {
		t.Fatalf("UpdateComponent: %v", err)
	}

	if _, err := svc.ReturnComponent(ctx, rec.RecordID); err != nil {
		t.Fatalf("ReturnComponent: %v", err)
	}
	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 10 {
		t.Errorf("return must clamp at totalQuantity, got %d", got.AvailableQuantity)
	}
}

func TestDeleteComponentGuardsActiveBorrows(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Oscilloscope", 2, 1)

	rec := mustBorrow(t, svc, comp.ComponentID, 1)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}

	err := svc.DeleteComponent(ctx, comp.ComponentID)
	if !errors.Is(err, inventory.ErrComponentInUse) {
		t.Fatalf("expected ErrComponentInUse, got %v", err)
	}

	if _, err := svc.ReturnComponent(ctx, rec.RecordID); err != nil {
		t.Fatalf("ReturnComponent: %v", err)
	}
	if err := svc.DeleteComponent(ctx, comp.ComponentID); err != nil {
		t.Fatalf("DeleteComponent after return: %v", err)
	}
	if _, err := svc.GetComponent(ctx, comp.ComponentID); !errors.Is(err, inventory.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// The ledger keeps its snapshot even though the component is gone.
	kept, err := svc.GetRecord(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if kept.ComponentName != "Oscilloscope" {
		t.Errorf("expected componentName snapshot to survive, got %q", kept.ComponentName)
	}
}

func TestConcurrentApprovalsNeverOverdraw(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Stepper Motor", 5, 1)

	// Five pending requests for 2 units each; only two can ever be honored.
	recordIDs := make([]string, 5)
	for i := range recordIDs {
		recordIDs[i] = mustBorrow(t, svc, comp.ComponentID, 2).RecordID
	}

	var wg sync.WaitGroup
	results := make(chan error, len(recordIDs))
	for _, id := range recordIDs {
		wg.Add(1)
		go func(recordID string) {
			defer wg.Done()
			_, err := svc.ApproveRecord(ctx, recordID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, inventory.ErrInsufficientStock) {
			t.Errorf("unexpected approval error: %v", err)
		}
	}
	if succeeded != 2 {
		t.Errorf("expected exactly 2 approvals to succeed, got %d", succeeded)
	}

	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity < 0 || got.AvailableQuantity > got.TotalQuantity {
		t.Fatalf("invariant violated: available %d, total %d", got.AvailableQuantity, got.TotalQuantity)
	}

	// available + sum of borrowed quantities must equal total.
	borrowed, _ := store.ListRecords(ctx, inventory.RecordFilter{Status: models.StatusBorrowed})
	onLoan := 0
	for _, r := range borrowed {
		onLoan += r.Quantity
	}
	if got.AvailableQuantity+onLoan != got.TotalQuantity {
		t.Errorf("ledger out of sync: available %d + on loan %d != total %d",
			got.AvailableQuantity, onLoan, got.TotalQuantity)
	}
}

func TestConcurrentApprovalsOfOneRecord(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Accelerometer", 10, 1)
	rec := mustBorrow(t, svc, comp.ComponentID, 3)

	// Stock is plentiful, so every racer passes the stock check; only the
	// record claim can separate them.
	const racers = 8
	start := make(chan struct{})
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.ApproveRecord(ctx, rec.RecordID)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, inventory.ErrInvalidTransition) {
			t.Errorf("unexpected approval error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("one record must be approved exactly once, got %d approvals", succeeded)
	}

	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 7 {
		t.Errorf("stock must be decremented once, got available %d", got.AvailableQuantity)
	}
	assertLedgerBalanced(t, svc, store, comp.ComponentID)
}

func TestConcurrentApproveAndRejectOneRecord(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Motor Driver", 10, 1)
	rec := mustBorrow(t, svc, comp.ComponentID, 3)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, err := svc.ApproveRecord(ctx, rec.RecordID)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		<-start
		_, err := svc.RejectRecord(ctx, rec.RecordID, "claimed first")
		errs <- err
	}()
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, inventory.ErrInvalidTransition) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("exactly one of approve/reject may claim the record, got %d", succeeded)
	}

	final, err := svc.GetRecord(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	switch final.Status {
	case models.StatusBorrowed:
		if got.AvailableQuantity != 7 {
			t.Errorf("approved record must hold 3 units, got available %d", got.AvailableQuantity)
		}
	case models.StatusRejected:
		if got.AvailableQuantity != 10 {
			t.Errorf("rejected record must hold nothing, got available %d", got.AvailableQuantity)
		}
	default:
		t.Errorf("unexpected final status %s", final.Status)
	}
	assertLedgerBalanced(t, svc, store, comp.ComponentID)
}

func TestConcurrentReturnsRestockOnce(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	comp := mustCreateComponent(t, svc, "Load Cell", 10, 1)

	// A second open loan keeps the shelf short of total, so a doubled
	// restock would be visible instead of hidden by the clamp.
	other := mustBorrow(t, svc, comp.ComponentID, 4)
	if _, err := svc.ApproveRecord(ctx, other.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}
	rec := mustBorrow(t, svc, comp.ComponentID, 3)
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}

	const racers = 4
	start := make(chan struct{})
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.ReturnComponent(ctx, rec.RecordID)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, inventory.ErrInvalidTransition) {
			t.Errorf("unexpected return error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("one loan must be returned exactly once, got %d returns", succeeded)
	}

	got, _ := svc.GetComponent(ctx, comp.ComponentID)
	if got.AvailableQuantity != 6 {
		t.Errorf("stock must be restocked once, got available %d", got.AvailableQuantity)
	}
	assertLedgerBalanced(t, svc, store, comp.ComponentID)
}

// assertLedgerBalanced checks available + units on loan == total.
func assertLedgerBalanced(t *testing.T, svc *inventory.Service, store *memstore.Store, componentID string) {
	t.Helper()
	comp, err := svc.GetComponent(context.Background(), componentID)
	if err != nil {
		t.Fatalf("GetComponent: %v", err)
	}
	borrowed, err := store.ListRecords(context.Background(), inventory.RecordFilter{
		ComponentID: componentID,
		Status:      models.StatusBorrowed,
	})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	onLoan := 0
	for _, r := range borrowed {
		onLoan += r.Quantity
	}
	if comp.AvailableQuantity+onLoan != comp.TotalQuantity {
		t.Errorf("ledger out of sync: available %d + on loan %d != total %d",
			comp.AvailableQuantity, onLoan, comp.TotalQuantity)
	}
}

type captureNotifier struct {
	mu        sync.Mutex
	requested []models.BorrowingRecord
	lowStock  []models.Component
}

func (n *captureNotifier) BorrowRequested(rec models.BorrowingRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, rec)
}

func (n *captureNotifier) LowStock(comp models.Component) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lowStock = append(n.lowStock, comp)
}

func TestNotifierEvents(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)

	comp := mustCreateComponent(t, svc, "Current Sensor", 6, 4)

	rec := mustBorrow(t, svc, comp.ComponentID, 3)
	if len(notifier.requested) != 1 || notifier.requested[0].RecordID != rec.RecordID {
		t.Fatalf("expected one borrow_requested event, got %+v", notifier.requested)
	}

	// Approval drops stock to 3, which is at or below the threshold of 4.
	if _, err := svc.ApproveRecord(ctx, rec.RecordID); err != nil {
		t.Fatalf("ApproveRecord: %v", err)
	}
	if len(notifier.lowStock) != 1 || notifier.lowStock[0].ComponentID != comp.ComponentID {
		t.Fatalf("expected one low_stock event, got %+v", notifier.lowStock)
	}
}

func TestRecommendRanksByMatchingTags(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	create := func(name string, tags []string) {
		t.Helper()
		_, err := svc.CreateComponent(ctx, inventory.CreateComponentInput{
			Name: name, Category: "Sensor", TotalQuantity: 5, Tags: tags,
		})
		if err != nil {
			t.Fatalf("CreateComponent(%s): %v", name, err)
		}
	}
	create("DHT22", []string{"temperature", "humidity", "digital"})
	create("LM35", []string{"temperature", "analog"})
	create("HC-SR04", []string{"ultrasonic", "distance"})

	recs, err := svc.Recommend(ctx, []string{"temperature", "humidity"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Name != "DHT22" || recs[0].MatchScore != 2 {
		t.Errorf("expected DHT22 with score 2 first, got %+v", recs[0])
	}
	if recs[1].Name != "LM35" || recs[1].MatchScore != 1 {
		t.Errorf("expected LM35 with score 1 second, got %+v", recs[1])
	}

	empty, err := svc.Recommend(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty result for no tags, got %v, %v", empty, err)
	}
}
