// service/loan/loan_service_test.go
package loansvc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookloans/model"
	"bookloans/repository/memory"
	loansvc "bookloans/service/loan"
	"bookloans/util/clock"
	"bookloans/util/fail"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	books   *memory.BookStore
	members *memory.MemberStore
	svc     loansvc.Service
	ctx     context.Context
}

// newFixture seeds members m1..m4 and available books b1..b6.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		books:   memory.NewBookStore(),
		members: memory.NewMemberStore(),
		ctx:     context.Background(),
	}
	f.svc = loansvc.New(f.books, f.members, clock.Fixed{Date: t0})

	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		require.NoError(t, f.members.Save(f.ctx, &model.Member{ID: id, Name: "Member " + id}))
	}
	for _, id := range []string{"b1", "b2", "b3", "b4", "b5", "b6"} {
		require.NoError(t, f.books.Save(f.ctx, &model.Book{ID: id, Title: "Book " + id}))
	}
	return f
}

func (f *fixture) book(t *testing.T, id string) *model.Book {
	t.Helper()
	b, err := f.books.FindByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

// seedLoan makes the member hold the book directly, bypassing the engine.
func (f *fixture) seedLoan(t *testing.T, bookID, memberID string, due time.Time) {
	t.Helper()
	b := f.book(t, bookID)
	b.StartLoan(memberID, due)
	require.NoError(t, f.books.Save(f.ctx, b))
}

func ptr(s string) *string { return &s }

func requireCode(t *testing.T, err error, code fail.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, fail.CodeOf(err))
}

func TestBorrowThenReturn(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))

	b := f.book(t, "b1")
	require.Equal(t, "m1", *b.LoanedTo)
	want := t0.AddDate(0, 0, loansvc.DefaultLoanDays)
	require.Equal(t, want, *b.DueDate)
	require.Equal(t, want, *b.FirstDueDate)

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.Nil(t, next)

	b = f.book(t, "b1")
	require.Nil(t, b.LoanedTo)
	require.Nil(t, b.DueDate)
	require.Nil(t, b.FirstDueDate)
	require.Empty(t, b.Queue)
}

func TestBorrowPreconditionOrder(t *testing.T) {
	f := newFixture(t)

	requireCode(t, f.svc.Borrow(f.ctx, "nope", "m1"), fail.CodeBookNotFound)
	requireCode(t, f.svc.Borrow(f.ctx, "b1", "nobody"), fail.CodeMemberNotFound)

	// The limit check comes before availability.
	for _, id := range []string{"b2", "b3", "b4", "b5", "b6"} {
		require.NoError(t, f.svc.Borrow(f.ctx, id, "m1"))
	}
	requireCode(t, f.svc.Borrow(f.ctx, "b1", "m1"), fail.CodeBorrowLimit)
}

func TestBorrowDistinguishesSelfFromOthers(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	requireCode(t, f.svc.Borrow(f.ctx, "b1", "m1"), fail.CodeAlreadyBorrowed)
	requireCode(t, f.svc.Borrow(f.ctx, "b1", "m2"), fail.CodeBookUnavailable)
}

func TestBorrowRespectsQueueHead(t *testing.T) {
	f := newFixture(t)

	// An available book carrying a queue: only the head may take it.
	b := f.book(t, "b1")
	b.Queue = []string{"m2", "m3"}
	require.NoError(t, f.books.Save(f.ctx, b))

	requireCode(t, f.svc.Borrow(f.ctx, "b1", "m4"), fail.CodeReserved)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m2"))
	b = f.book(t, "b1")
	require.Equal(t, "m2", *b.LoanedTo)
	require.Equal(t, []string{"m3"}, b.Queue)
}

func TestReturnQueueHandoff(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, "m2", *next)

	b := f.book(t, "b1")
	require.Equal(t, "m2", *b.LoanedTo)
	want := t0.AddDate(0, 0, loansvc.DefaultLoanDays)
	require.Equal(t, want, *b.DueDate)
	require.Equal(t, want, *b.FirstDueDate)
	require.Equal(t, []string{"m3"}, b.Queue)
}

func TestReturnSkipsIneligibleHead(t *testing.T) {
	f := newFixture(t)

	// m3 is at the loan limit.
	for i := 0; i < loansvc.MaxLoans; i++ {
		id := fmt.Sprintf("x%d", i)
		require.NoError(t, f.books.Save(f.ctx, &model.Book{ID: id, Title: "Filler " + id}))
		f.seedLoan(t, id, "m3", t0.AddDate(0, 0, 14))
	}

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, "m2", *next)

	// m3 was skipped and dropped for good.
	b := f.book(t, "b1")
	require.Equal(t, "m2", *b.LoanedTo)
	require.Empty(t, b.Queue)
}

func TestReturnSkipsVanishedMember(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	require.NoError(t, f.members.Delete(f.ctx, "m2"))

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, "m3", *next)
}

func TestReturnQueueEmptiesWithoutMatch(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	require.NoError(t, f.members.Delete(f.ctx, "m2"))

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.Nil(t, next)

	b := f.book(t, "b1")
	require.Nil(t, b.LoanedTo)
	require.Empty(t, b.Queue)
}

func TestReturnRejectsWrongOrMissingBorrower(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))

	_, err := f.svc.Return(f.ctx, "b1", ptr("m2"))
	requireCode(t, err, fail.CodeNotBorrower)
	_, err = f.svc.Return(f.ctx, "b1", nil)
	requireCode(t, err, fail.CodeNotBorrower)
	_, err = f.svc.Return(f.ctx, "b2", ptr("m1"))
	requireCode(t, err, fail.CodeNotLoaned)
	_, err = f.svc.Return(f.ctx, "nope", ptr("m1"))
	requireCode(t, err, fail.CodeBookNotFound)

	// Book unchanged by any of the failures.
	b := f.book(t, "b1")
	require.Equal(t, "m1", *b.LoanedTo)
}

func TestReserveImmediateLoan(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m1"))

	b := f.book(t, "b1")
	require.Equal(t, "m1", *b.LoanedTo)
	require.Empty(t, b.Queue)
}

func TestReserveQueuesWhenLoaned(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))

	b := f.book(t, "b1")
	require.Equal(t, []string{"m2", "m3"}, b.Queue)

	requireCode(t, f.svc.Reserve(f.ctx, "b1", "m2"), fail.CodeAlreadyReserved)
	requireCode(t, f.svc.Reserve(f.ctx, "b1", "m1"), fail.CodeAlreadyBorrowed)
}

func TestReserveQueuesWhenAtLimit(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"b2", "b3", "b4", "b5", "b6"} {
		require.NoError(t, f.svc.Borrow(f.ctx, id, "m1"))
	}

	// b1 is on the shelf but m1 has no headroom, so the reserve queues.
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m1"))
	b := f.book(t, "b1")
	require.Nil(t, b.LoanedTo)
	require.Equal(t, []string{"m1"}, b.Queue)
}

func TestReserveShortcutBypassesStaleQueue(t *testing.T) {
	f := newFixture(t)

	// Available book with a leftover queue: a fresh reserver leapfrogs it.
	b := f.book(t, "b1")
	b.Queue = []string{"m2"}
	require.NoError(t, f.books.Save(f.ctx, b))

	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	b = f.book(t, "b1")
	require.Equal(t, "m3", *b.LoanedTo)
	require.Equal(t, []string{"m2"}, b.Queue)
}

func TestNoQueueJumpAfterHandoff(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))

	next, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)
	require.Equal(t, "m2", *next)

	// The queue is empty after the handoff, so the failure is
	// BOOK_UNAVAILABLE, not RESERVED.
	requireCode(t, f.svc.Borrow(f.ctx, "b1", "m3"), fail.CodeBookUnavailable)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m4"))

	require.NoError(t, f.svc.CancelReservation(f.ctx, "b1", "m3"))
	b := f.book(t, "b1")
	require.Equal(t, []string{"m2", "m4"}, b.Queue)

	requireCode(t, f.svc.CancelReservation(f.ctx, "b1", "m3"), fail.CodeNotReserved)
	requireCode(t, f.svc.CancelReservation(f.ctx, "nope", "m3"), fail.CodeBookNotFound)
	requireCode(t, f.svc.CancelReservation(f.ctx, "b1", "nobody"), fail.CodeMemberNotFound)
}

func TestReserveCancelRoundTrip(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m2"))
	before := f.book(t, "b1").Queue

	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	require.NoError(t, f.svc.CancelReservation(f.ctx, "b1", "m3"))

	require.Equal(t, before, f.book(t, "b1").Queue)
}

func TestExtendLoan(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))

	// dueDate = T0+14; +76 lands exactly on firstDueDate+90.
	require.NoError(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m1"), 76))
	b := f.book(t, "b1")
	require.Equal(t, t0.AddDate(0, 0, 90), *b.DueDate)
	require.Equal(t, t0.AddDate(0, 0, 14), *b.FirstDueDate)

	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m1"), 1), fail.CodeMaxExtensionReached)
	// Failure changed nothing; a second try fails the same way.
	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m1"), 1), fail.CodeMaxExtensionReached)
	require.Equal(t, t0.AddDate(0, 0, 90), *f.book(t, "b1").DueDate)
}

func TestExtendLoanRejections(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))

	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m1"), 0), fail.CodeInvalidExtension)
	requireCode(t, f.svc.ExtendLoan(f.ctx, "nope", ptr("m1"), 7), fail.CodeBookNotFound)
	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("nobody"), 7), fail.CodeMemberNotFound)
	requireCode(t, f.svc.ExtendLoan(f.ctx, "b2", ptr("m1"), 7), fail.CodeNotLoaned)
	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m2"), 7), fail.CodeNotBorrower)
	requireCode(t, f.svc.ExtendLoan(f.ctx, "b1", nil, 7), fail.CodeNotBorrower)
}

func TestExtendLoanNegativeDaysShorten(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.ExtendLoan(f.ctx, "b1", ptr("m1"), -20))

	b := f.book(t, "b1")
	require.Equal(t, t0.AddDate(0, 0, -6), *b.DueDate)
	require.True(t, b.DueDate.Before(t0), "shortened due date lies in the past")
	require.Equal(t, t0.AddDate(0, 0, 14), *b.FirstDueDate)
}

// Loan-field coherence after a mixed sequence of operations.
func TestLoanFieldsTravelTogether(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Borrow(f.ctx, "b1", "m1"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b2", "m2"))
	require.NoError(t, f.svc.Reserve(f.ctx, "b1", "m3"))
	_, err := f.svc.Return(f.ctx, "b1", ptr("m1"))
	require.NoError(t, err)

	all, err := f.books.FindAll(f.ctx)
	require.NoError(t, err)
	for _, b := range all {
		loaned := b.LoanedTo != nil
		require.Equal(t, loaned, b.DueDate != nil, "book %s", b.ID)
		require.Equal(t, loaned, b.FirstDueDate != nil, "book %s", b.ID)
		if loaned {
			require.NotContains(t, b.Queue, *b.LoanedTo, "book %s", b.ID)
		}
	}
}
