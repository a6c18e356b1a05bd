// Package main library loan API.
//
// @title           Library Loans API
// @version         1.0
// @description     Loan and reservation engine for a small library (books, members, FIFO waiting lists).
// @BasePath        /
// @schemes         http
package main

import (
	"bookloans/app/echoServer"
	catalogctrl "bookloans/app/echoServer/controller/catalog"
	loanctrl "bookloans/app/echoServer/controller/loan"
	queryctrl "bookloans/app/echoServer/controller/query"
	"bookloans/app/echoServer/validation"
	"bookloans/config"
	bookrepo "bookloans/repository/book"
	memberrepo "bookloans/repository/member"
	"bookloans/repository/memory"
	catalogsvc "bookloans/service/catalog"
	loansvc "bookloans/service/loan"
	querysvc "bookloans/service/query"
	"bookloans/util/clock"
	"bookloans/util/database"
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// stores
	var (
		books   bookrepo.Repo
		members memberrepo.Repo
	)
	switch cfg.Storage {
	case "memory":
		books = memory.NewBookStore()
		members = memory.NewMemberStore()
		log.Info("using in-memory stores")
	default:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}
		books = bookrepo.New(db.Pool)
		members = memberrepo.New(db.Pool)
	}

	clk := clock.System{}

	// services
	ls := loansvc.New(books, members, clk)
	cs := catalogsvc.New(books, members)
	qs := querysvc.New(books, members)

	// controllers
	v := validator.New()
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	queryC := &queryctrl.Controller{Svc: qs, Clk: clk, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Loan:    loanC,
		Catalog: catalogC,
		Query:   queryC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "storage", cfg.Storage, "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
