package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Borrowing record lifecycle states. "overdue" is derived from
// ExpectedReturnDate and never stored.
const (
	StatusPending  = "pending"
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
	StatusRejected = "rejected"
)

// BorrowingRecord is one ledger entry per borrow transaction.
// ComponentName is a snapshot taken at request time so history survives
// renames and deletions of the catalog entry.
type BorrowingRecord struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID           string             `bson:"recordId" json:"recordId"`
	UserID             string             `bson:"userId" json:"userId"`
	ComponentID        string             `bson:"componentId" json:"componentId"`
	ComponentName      string             `bson:"componentName" json:"componentName"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	BorrowDate         *time.Time         `bson:"borrowDate,omitempty" json:"borrowDate,omitempty"`
	ExpectedReturnDate time.Time          `bson:"expectedReturnDate" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time         `bson:"actualReturnDate,omitempty" json:"actualReturnDate,omitempty"`
	Status             string             `bson:"status" json:"status"`
	Remarks            string             `bson:"remarks" json:"remarks"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsOverdue reports whether the record is borrowed and past its expected
// return date. The comparison is date-only; time of day is ignored.
func (r *BorrowingRecord) IsOverdue(now time.Time) bool {
	if r.Status != StatusBorrowed {
		return false
	}
	due := truncateToDay(r.ExpectedReturnDate)
	return due.Before(truncateToDay(now))
}

// DaysOverdue returns how many whole days the record is past due, 0 if not overdue.
func (r *BorrowingRecord) DaysOverdue(now time.Time) int {
	if !r.IsOverdue(now) {
		return 0
	}
	return int(truncateToDay(now).Sub(truncateToDay(r.ExpectedReturnDate)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
