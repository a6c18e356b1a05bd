package loan

import (
	"log/slog"
	"net/http"

	"bookloans/app/echoServer/respond"
	loansvc "bookloans/service/loan"
	"bookloans/util/fail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/borrow
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.Svc.Borrow(c.Request().Context(), req.BookID, req.MemberID); err != nil {
		return respond.Fail(c, h.Log, "borrow", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/return
//
// Failures come back as a bare {ok:false}: the reason would reveal whether
// the caller guessed the borrower, so it is logged and not disclosed.
func (h *Controller) Return(c echo.Context) error {
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"ok": false})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"ok": false})
	}
	next, err := h.Svc.Return(c.Request().Context(), req.BookID, req.MemberID)
	if err != nil {
		if code := fail.CodeOf(err); code != "" {
			h.Log.Info("return rejected", "book_id", req.BookID, "code", code)
			return c.JSON(http.StatusConflict, echo.Map{"ok": false})
		}
		h.Log.Error("return", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false})
	}
	if next != nil {
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "nextMemberId": *next})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/reserve
func (h *Controller) Reserve(c echo.Context) error {
	var req ReserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.Svc.Reserve(c.Request().Context(), req.BookID, req.MemberID); err != nil {
		return respond.Fail(c, h.Log, "reserve", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/cancel-reservation
func (h *Controller) CancelReservation(c echo.Context) error {
	var req CancelReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.Svc.CancelReservation(c.Request().Context(), req.BookID, req.MemberID); err != nil {
		return respond.Fail(c, h.Log, "cancel reservation", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/extend
func (h *Controller) Extend(c echo.Context) error {
	var req ExtendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
	}
	if err := h.Svc.ExtendLoan(c.Request().Context(), req.BookID, req.MemberID, *req.Days); err != nil {
		return respond.Fail(c, h.Log, "extend", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
