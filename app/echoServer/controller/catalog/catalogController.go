package catalog

import (
	"log/slog"
	"net/http"

	"bookloans/app/echoServer/respond"
	catalogsvc "bookloans/service/catalog"
	"bookloans/util/fail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "reason": fail.CodeInvalidRequest})
}

// POST /api/books
func (h *Controller) CreateBook(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.V.Struct(req); err != nil {
		return badRequest(c)
	}
	if err := h.Svc.CreateBook(c.Request().Context(), req.ID, req.Title); err != nil {
		return respond.Fail(c, h.Log, "create book", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true})
}

// PUT /api/books/:id
func (h *Controller) UpdateBook(c echo.Context) error {
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.Svc.UpdateBook(c.Request().Context(), c.Param("id"), req.Title); err != nil {
		return respond.Fail(c, h.Log, "update book", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DELETE /api/books/:id
func (h *Controller) DeleteBook(c echo.Context) error {
	if err := h.Svc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Fail(c, h.Log, "delete book", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/members
func (h *Controller) CreateMember(c echo.Context) error {
	var req CreateMemberReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.V.Struct(req); err != nil {
		return badRequest(c)
	}
	if err := h.Svc.CreateMember(c.Request().Context(), req.ID, req.Name); err != nil {
		return respond.Fail(c, h.Log, "create member", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true})
}

// PUT /api/members/:id
func (h *Controller) UpdateMember(c echo.Context) error {
	var req UpdateMemberReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.Svc.UpdateMember(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return respond.Fail(c, h.Log, "update member", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DELETE /api/members/:id
func (h *Controller) DeleteMember(c echo.Context) error {
	if err := h.Svc.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Fail(c, h.Log, "delete member", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
