// Package loansvc is the loan and reservation engine: the only writer of a
// book's loan fields and reservation queue. Business rejections come back as
// coded errors (util/fail); anything else is a store failure.
package loansvc

import (
	"context"
	"time"

	bookrepo "bookloans/repository/book"
	memberrepo "bookloans/repository/member"
	"bookloans/util/clock"
	"bookloans/util/fail"

	"bookloans/model"
)

const (
	// MaxLoans is the per-member ceiling on concurrent loans.
	MaxLoans = 5
	// DefaultLoanDays is the loan period granted on borrow and handoff.
	DefaultLoanDays = 14
	// MaxExtensionDays bounds the due date relative to the first due date.
	MaxExtensionDays = 90
)

type Service interface {
	Borrow(ctx context.Context, bookID, memberID string) error

	// Return hands the book back and drains the reservation queue. When the
	// queue produced a new borrower, that member's id is returned. The
	// caller-supplied memberID is optional on the wire but the engine
	// rejects a missing or mismatched one.
	Return(ctx context.Context, bookID string, memberID *string) (*string, error)

	Reserve(ctx context.Context, bookID, memberID string) error
	CancelReservation(ctx context.Context, bookID, memberID string) error
	ExtendLoan(ctx context.Context, bookID string, memberID *string, days int) error
}

type service struct {
	books   bookrepo.Repo
	members memberrepo.Repo
	clk     clock.Clock
}

func New(books bookrepo.Repo, members memberrepo.Repo, clk clock.Clock) Service {
	return &service{books: books, members: members, clk: clk}
}

func (s *service) Borrow(ctx context.Context, bookID, memberID string) error {
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}

	ok, err := s.members.ExistsByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return fail.New(fail.CodeMemberNotFound)
	}

	under, err := s.underLoanLimit(ctx, memberID)
	if err != nil {
		return err
	}
	if !under {
		return fail.New(fail.CodeBorrowLimit)
	}

	if b.IsLoaned() {
		if b.IsLoanedTo(memberID) {
			return fail.New(fail.CodeAlreadyBorrowed)
		}
		return fail.New(fail.CodeBookUnavailable)
	}

	// An available book may still carry a queue; only its head may take it.
	if len(b.Queue) > 0 && b.Queue[0] != memberID {
		return fail.New(fail.CodeReserved)
	}

	if len(b.Queue) > 0 {
		b.Queue = b.Queue[1:]
	}
	b.StartLoan(memberID, s.dueDate())
	return s.books.Save(ctx, b)
}

func (s *service) Return(ctx context.Context, bookID string, memberID *string) (*string, error) {
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fail.New(fail.CodeBookNotFound)
	}
	if !b.IsLoaned() {
		return nil, fail.New(fail.CodeNotLoaned)
	}
	if memberID == nil || *memberID != *b.LoanedTo {
		return nil, fail.New(fail.CodeNotBorrower)
	}

	b.ClearLoan()
	next, err := s.drainQueue(ctx, b)
	if err != nil {
		return nil, err
	}
	// One write only, so the return and any handoff commit together.
	if err := s.books.Save(ctx, b); err != nil {
		return nil, err
	}
	return next, nil
}

// drainQueue pops queue heads until one is eligible and hands the book to
// it. Skipped members lose their reservation for good. The caller persists.
func (s *service) drainQueue(ctx context.Context, b *model.Book) (*string, error) {
	for len(b.Queue) > 0 {
		head := b.Queue[0]
		b.Queue = b.Queue[1:]

		eligible, err := s.canBorrow(ctx, head)
		if err != nil {
			return nil, err
		}
		if eligible {
			b.StartLoan(head, s.dueDate())
			return &head, nil
		}
	}
	return nil, nil
}

func (s *service) Reserve(ctx context.Context, bookID, memberID string) error {
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}

	ok, err := s.members.ExistsByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return fail.New(fail.CodeMemberNotFound)
	}

	if b.IsLoanedTo(memberID) {
		return fail.New(fail.CodeAlreadyBorrowed)
	}
	if b.QueueContains(memberID) {
		return fail.New(fail.CodeAlreadyReserved)
	}

	// Immediate loan when the book sits on the shelf and the member has
	// headroom. Deliberately ignores any queue: an available book only
	// carries one when every queued member was ineligible at drain time.
	if !b.IsLoaned() {
		under, err := s.underLoanLimit(ctx, memberID)
		if err != nil {
			return err
		}
		if under {
			b.StartLoan(memberID, s.dueDate())
			return s.books.Save(ctx, b)
		}
	}

	b.Queue = append(b.Queue, memberID)
	return s.books.Save(ctx, b)
}

func (s *service) CancelReservation(ctx context.Context, bookID, memberID string) error {
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}

	ok, err := s.members.ExistsByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return fail.New(fail.CodeMemberNotFound)
	}

	if !b.RemoveFromQueue(memberID) {
		return fail.New(fail.CodeNotReserved)
	}
	return s.books.Save(ctx, b)
}

func (s *service) ExtendLoan(ctx context.Context, bookID string, memberID *string, days int) error {
	if days == 0 {
		return fail.New(fail.CodeInvalidExtension)
	}

	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}

	if memberID != nil {
		ok, err := s.members.ExistsByID(ctx, *memberID)
		if err != nil {
			return err
		}
		if !ok {
			return fail.New(fail.CodeMemberNotFound)
		}
	}

	if !b.IsLoaned() {
		return fail.New(fail.CodeNotLoaned)
	}
	if memberID == nil || *memberID != *b.LoanedTo {
		return fail.New(fail.CodeNotBorrower)
	}

	// Negative days shorten the loan; only the upper bound is enforced.
	newDue := b.DueDate.AddDate(0, 0, days)
	ceiling := b.FirstDueDate.AddDate(0, 0, MaxExtensionDays)
	if newDue.After(ceiling) {
		return fail.New(fail.CodeMaxExtensionReached)
	}

	b.DueDate = &newDue
	return s.books.Save(ctx, b)
}

// canBorrow reports whether the member exists and is under the loan limit.
// Backed by the indexed count so drain passes stay cheap per candidate.
func (s *service) canBorrow(ctx context.Context, memberID string) (bool, error) {
	ok, err := s.members.ExistsByID(ctx, memberID)
	if err != nil || !ok {
		return false, err
	}
	return s.underLoanLimit(ctx, memberID)
}

func (s *service) underLoanLimit(ctx context.Context, memberID string) (bool, error) {
	n, err := s.books.CountByLoanedTo(ctx, memberID)
	if err != nil {
		return false, err
	}
	return n < MaxLoans, nil
}

func (s *service) dueDate() time.Time {
	return s.clk.Today().AddDate(0, 0, DefaultLoanDays)
}
