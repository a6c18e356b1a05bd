// Package respond maps coded business errors to HTTP replies so the
// controllers share one status table.
package respond

import (
	"log/slog"
	"net/http"

	"bookloans/util/fail"

	"github.com/labstack/echo/v4"
)

// Status picks the HTTP status for a reason code.
func Status(code fail.Code) int {
	switch code {
	case fail.CodeBookNotFound, fail.CodeMemberNotFound:
		return http.StatusNotFound
	case fail.CodeInvalidRequest, fail.CodeInvalidExtension:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// Fail writes {ok:false, reason} for coded errors and a plain 500 for
// everything else.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	code := fail.CodeOf(err)
	if code == "" {
		log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "message": "internal error"})
	}
	return c.JSON(Status(code), echo.Map{"ok": false, "reason": code})
}
