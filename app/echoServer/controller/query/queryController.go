package query

import (
	"log/slog"
	"net/http"

	"bookloans/app/echoServer/respond"
	querysvc "bookloans/service/query"
	"bookloans/util/clock"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc querysvc.Service
	Clk clock.Clock
	Log *slog.Logger
}

// GET /api/books
func (h *Controller) ListBooks(c echo.Context) error {
	books, err := h.Svc.ListBooks(c.Request().Context())
	if err != nil {
		return respond.Fail(c, h.Log, "list books", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": NewBookResponses(books)})
}

// GET /api/books/:id
func (h *Controller) GetBook(c echo.Context) error {
	b, err := h.Svc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Fail(c, h.Log, "get book", err)
	}
	return c.JSON(http.StatusOK, NewBookResponse(*b))
}

// GET /api/members
func (h *Controller) ListMembers(c echo.Context) error {
	members, err := h.Svc.ListMembers(c.Request().Context())
	if err != nil {
		return respond.Fail(c, h.Log, "list members", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": members})
}

// GET /api/books/search?titleContains=&available=&loanedTo=
func (h *Controller) SearchBooks(c echo.Context) error {
	q := querysvc.Search{
		TitleContains: c.QueryParam("titleContains"),
		LoanedTo:      c.QueryParam("loanedTo"),
	}
	switch c.QueryParam("available") {
	case "true":
		v := true
		q.Available = &v
	case "false":
		v := false
		q.Available = &v
	}

	books, err := h.Svc.SearchBooks(c.Request().Context(), q)
	if err != nil {
		return respond.Fail(c, h.Log, "search books", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": NewBookResponses(books)})
}

// GET /api/overdue
func (h *Controller) Overdue(c echo.Context) error {
	books, err := h.Svc.OverdueBooks(c.Request().Context(), h.Clk.Today())
	if err != nil {
		return respond.Fail(c, h.Log, "overdue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": NewBookResponses(books)})
}

// GET /api/members/:id/summary
func (h *Controller) MemberSummary(c echo.Context) error {
	sum, err := h.Svc.MemberSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Fail(c, h.Log, "member summary", err)
	}
	return c.JSON(http.StatusOK, NewSummaryResponse(sum))
}
