// Package querysvc serves the read-only projections. Nothing in here writes.
package querysvc

import (
	"context"
	"strings"
	"time"

	bookrepo "bookloans/repository/book"
	memberrepo "bookloans/repository/member"
	"bookloans/util/fail"

	"bookloans/model"
)

// Search is the conjunctive book filter. Empty/nil fields are "no filter".
type Search struct {
	TitleContains string
	Available     *bool
	LoanedTo      string
}

// Loan is one currently-held book in a member summary.
type Loan struct {
	BookID       string    `json:"bookId"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"dueDate"`
	FirstDueDate time.Time `json:"firstDueDate"`
}

// Reservation is one queue membership in a member summary; Position is the
// 0-based index in that book's queue.
type Reservation struct {
	BookID   string `json:"bookId"`
	Position int    `json:"position"`
}

type Summary struct {
	Member       model.Member  `json:"member"`
	Loans        []Loan        `json:"loans"`
	Reservations []Reservation `json:"reservations"`
}

type Service interface {
	GetBook(ctx context.Context, id string) (*model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	SearchBooks(ctx context.Context, q Search) ([]model.Book, error)
	OverdueBooks(ctx context.Context, today time.Time) ([]model.Book, error)
	MemberSummary(ctx context.Context, memberID string) (*Summary, error)
}

type service struct {
	books   bookrepo.Repo
	members memberrepo.Repo
}

func New(books bookrepo.Repo, members memberrepo.Repo) Service {
	return &service{books: books, members: members}
}

func (s *service) GetBook(ctx context.Context, id string) (*model.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fail.New(fail.CodeBookNotFound)
	}
	return b, nil
}

func (s *service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.books.FindAll(ctx)
}

func (s *service) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.members.FindAll(ctx)
}

// SearchBooks narrows with the most selective indexed query first, then
// applies the title substring filter in memory.
func (s *service) SearchBooks(ctx context.Context, q Search) ([]model.Book, error) {
	var (
		books []model.Book
		err   error
	)
	switch {
	case q.LoanedTo != "":
		books, err = s.books.FindByLoanedTo(ctx, q.LoanedTo)
	case q.Available != nil && *q.Available:
		books, err = s.books.FindAvailable(ctx)
	case q.Available != nil:
		books, err = s.books.FindAll(ctx)
		if err == nil {
			loaned := books[:0]
			for _, b := range books {
				if b.IsLoaned() {
					loaned = append(loaned, b)
				}
			}
			books = loaned
		}
	case q.TitleContains != "":
		return s.books.FindByTitleContaining(ctx, q.TitleContains)
	default:
		books, err = s.books.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if q.TitleContains == "" {
		return books, nil
	}
	needle := strings.ToLower(q.TitleContains)
	out := books[:0]
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			out = append(out, b)
		}
	}
	return out, nil
}

// OverdueBooks lists loans strictly past due as of the given date.
func (s *service) OverdueBooks(ctx context.Context, today time.Time) ([]model.Book, error) {
	return s.books.FindByDueDateBefore(ctx, today)
}

func (s *service) MemberSummary(ctx context.Context, memberID string) (*Summary, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fail.New(fail.CodeMemberNotFound)
	}

	held, err := s.books.FindByLoanedTo(ctx, memberID)
	if err != nil {
		return nil, err
	}
	queued, err := s.books.FindByQueueContaining(ctx, memberID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Member: *m, Loans: []Loan{}, Reservations: []Reservation{}}
	for _, b := range held {
		sum.Loans = append(sum.Loans, Loan{
			BookID:       b.ID,
			Title:        b.Title,
			DueDate:      *b.DueDate,
			FirstDueDate: *b.FirstDueDate,
		})
	}
	for i := range queued {
		sum.Reservations = append(sum.Reservations, Reservation{
			BookID:   queued[i].ID,
			Position: queued[i].QueuePosition(memberID),
		})
	}
	return sum, nil
}
