package echoServer

import (
	"bookloans/app/echoServer/controller/catalog"
	"bookloans/app/echoServer/controller/loan"
	"bookloans/app/echoServer/controller/query"

	"github.com/labstack/echo/v4"
)

type C struct {
	Loan    *loan.Controller
	Catalog *catalog.Controller
	Query   *query.Controller
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")

	// Loan engine
	api.POST("/borrow", c.Loan.Borrow)
	api.POST("/return", c.Loan.Return)
	api.POST("/reserve", c.Loan.Reserve)
	api.POST("/cancel-reservation", c.Loan.CancelReservation)
	api.POST("/extend", c.Loan.Extend)

	// Queries
	api.GET("/books", c.Query.ListBooks)
	api.GET("/books/search", c.Query.SearchBooks)
	api.GET("/books/:id", c.Query.GetBook)
	api.GET("/members", c.Query.ListMembers)
	api.GET("/members/:id/summary", c.Query.MemberSummary)
	api.GET("/overdue", c.Query.Overdue)

	// Catalog
	api.POST("/books", c.Catalog.CreateBook)
	api.PUT("/books/:id", c.Catalog.UpdateBook)
	api.DELETE("/books/:id", c.Catalog.DeleteBook)
	api.POST("/members", c.Catalog.CreateMember)
	api.PUT("/members/:id", c.Catalog.UpdateMember)
	api.DELETE("/members/:id", c.Catalog.DeleteMember)
}
