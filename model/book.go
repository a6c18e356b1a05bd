// model/book.go
package model

import "time"

// Book is the loanable aggregate. Loan fields travel together: LoanedTo,
// DueDate and FirstDueDate are either all set (book on loan) or all nil
// (book available). Queue is the FIFO reservation queue, head at index 0.
type Book struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	LoanedTo     *string    `json:"loanedTo,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	FirstDueDate *time.Time `json:"firstDueDate,omitempty"`
	Queue        []string   `json:"reservationQueue"`

	// Version is the optimistic-concurrency counter maintained by the
	// store adapters. Zero means "never persisted".
	Version int64 `json:"-"`
}

func (b *Book) IsLoaned() bool { return b.LoanedTo != nil }

func (b *Book) IsLoanedTo(memberID string) bool {
	return b.LoanedTo != nil && *b.LoanedTo == memberID
}

func (b *Book) QueueContains(memberID string) bool {
	for _, id := range b.Queue {
		if id == memberID {
			return true
		}
	}
	return false
}

// QueuePosition returns the 0-based position of memberID in the queue,
// or -1 when absent.
func (b *Book) QueuePosition(memberID string) int {
	for i, id := range b.Queue {
		if id == memberID {
			return i
		}
	}
	return -1
}

// RemoveFromQueue splices out the first occurrence of memberID, keeping
// the relative order of the remaining entries. Reports whether anything
// was removed.
func (b *Book) RemoveFromQueue(memberID string) bool {
	for i, id := range b.Queue {
		if id == memberID {
			b.Queue = append(b.Queue[:i], b.Queue[i+1:]...)
			return true
		}
	}
	return false
}

// StartLoan sets the three loan fields as one transition.
func (b *Book) StartLoan(memberID string, due time.Time) {
	b.LoanedTo = &memberID
	due = due.UTC()
	b.DueDate = &due
	first := due
	b.FirstDueDate = &first
}

// ClearLoan resets the book to the available state. The queue is untouched.
func (b *Book) ClearLoan() {
	b.LoanedTo = nil
	b.DueDate = nil
	b.FirstDueDate = nil
}

// Clone returns a deep copy so store adapters can hand out values that do
// not alias their internal state.
func (b *Book) Clone() *Book {
	c := *b
	if b.LoanedTo != nil {
		v := *b.LoanedTo
		c.LoanedTo = &v
	}
	if b.DueDate != nil {
		v := *b.DueDate
		c.DueDate = &v
	}
	if b.FirstDueDate != nil {
		v := *b.FirstDueDate
		c.FirstDueDate = &v
	}
	if b.Queue != nil {
		c.Queue = append([]string(nil), b.Queue...)
	}
	return &c
}
