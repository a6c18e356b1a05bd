package query

import (
	"time"

	querysvc "bookloans/service/query"

	"bookloans/model"
)

const dateLayout = "2006-01-02"

// BookResponse is the wire shape of a book; dates are ISO-8601 calendar
// dates, not timestamps.
type BookResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	LoanedTo         *string  `json:"loanedTo,omitempty"`
	DueDate          *string  `json:"dueDate,omitempty"`
	FirstDueDate     *string  `json:"firstDueDate,omitempty"`
	ReservationQueue []string `json:"reservationQueue"`
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func NewBookResponse(b model.Book) BookResponse {
	queue := b.Queue
	if queue == nil {
		queue = []string{}
	}
	return BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		LoanedTo:         b.LoanedTo,
		DueDate:          isoDate(b.DueDate),
		FirstDueDate:     isoDate(b.FirstDueDate),
		ReservationQueue: queue,
	}
}

func NewBookResponses(books []model.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, NewBookResponse(b))
	}
	return out
}

type SummaryLoan struct {
	BookID       string `json:"bookId"`
	Title        string `json:"title"`
	DueDate      string `json:"dueDate"`
	FirstDueDate string `json:"firstDueDate"`
}

type SummaryReservation struct {
	BookID   string `json:"bookId"`
	Position int    `json:"position"`
}

type SummaryResponse struct {
	OK           bool                 `json:"ok"`
	Member       model.Member         `json:"member"`
	Loans        []SummaryLoan        `json:"loans"`
	Reservations []SummaryReservation `json:"reservations"`
}

func NewSummaryResponse(s *querysvc.Summary) SummaryResponse {
	out := SummaryResponse{
		OK:           true,
		Member:       s.Member,
		Loans:        []SummaryLoan{},
		Reservations: []SummaryReservation{},
	}
	for _, l := range s.Loans {
		out.Loans = append(out.Loans, SummaryLoan{
			BookID:       l.BookID,
			Title:        l.Title,
			DueDate:      l.DueDate.Format(dateLayout),
			FirstDueDate: l.FirstDueDate.Format(dateLayout),
		})
	}
	for _, r := range s.Reservations {
		out.Reservations = append(out.Reservations, SummaryReservation{BookID: r.BookID, Position: r.Position})
	}
	return out
}
