// Package api exposes the ledger over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/umar-saleem/points-ledger/internal/ledger"
	"github.com/umar-saleem/points-ledger/internal/metrics"
	"github.com/umar-saleem/points-ledger/internal/models"
)

// Server wires the transactor into a fiber application.
type Server struct {
	app        *fiber.App
	transactor *ledger.Transactor
	log        *zap.Logger
}

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// amountRequest is the body of credit and debit requests. Amounts must
// be whole numbers; a fractional amount fails to parse and is rejected
// as an invalid amount.
type amountRequest struct {
	Amount int64 `json:"amount"`
}

// NewServer builds the HTTP server around a transactor.
func NewServer(transactor *ledger.Transactor, log *zap.Logger) *Server {
	s := &Server{
		transactor: transactor,
		log:        log,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(s.observe)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	))

	app.Get("/accounts/:id/balance", s.getBalance)
	app.Post("/accounts/:id/credit", s.credit)
	app.Post("/accounts/:id/debit", s.debit)
	app.Get("/accounts/:id/history", s.listHistory)

	s.app = app

	return s
}

// App returns the underlying fiber application, for serving and tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// observe records per-request metrics using the route pattern, not the
// raw path, to keep label cardinality bounded.
func (s *Server) observe(c *fiber.Ctx) error {
	err := c.Next()

	path := c.Route().Path
	metrics.HTTPRequest(c.Method(), path, strconv.Itoa(c.Response().StatusCode()))

	return err
}

func (s *Server) getBalance(c *fiber.Ctx) error {
	key, err := parseKey(c)
	if err != nil {
		return s.renderError(c, err)
	}

	account, err := s.transactor.Balance(c.Context(), key)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(account)
}

func (s *Server) credit(c *fiber.Ctx) error {
	return s.apply(c, models.OperationCredit)
}

func (s *Server) debit(c *fiber.Ctx) error {
	return s.apply(c, models.OperationDebit)
}

func (s *Server) apply(c *fiber.Ctx, kind models.OperationKind) error {
	key, err := parseKey(c)
	if err != nil {
		return s.renderError(c, err)
	}

	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return s.renderError(c, ledger.ErrInvalidAmount)
	}

	account, err := s.transactor.Apply(c.Context(), key, kind, req.Amount)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(account)
}

func (s *Server) listHistory(c *fiber.Ctx) error {
	key, err := parseKey(c)
	if err != nil {
		return s.renderError(c, err)
	}

	entries, err := s.transactor.History(c.Context(), key)
	if err != nil {
		return s.renderError(c, err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	return c.JSON(entries)
}

// parseKey reads the account id path parameter. Anything that is not a
// positive integer maps to ErrInvalidKey before the core is touched.
func parseKey(c *fiber.Ctx) (int64, error) {
	key, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || key <= 0 {
		return 0, ledger.ErrInvalidKey
	}

	return key, nil
}

// renderError maps the error taxonomy onto HTTP statuses: malformed
// input is 400, domain refusals are 422, everything else is a 500.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidKey):
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Code: "INVALID_KEY", Message: err.Error()})
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrUnknownKind):
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Code: "INVALID_AMOUNT", Message: err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return c.Status(http.StatusUnprocessableEntity).JSON(errorResponse{Code: "INSUFFICIENT_FUNDS", Message: err.Error()})
	case errors.Is(err, ledger.ErrBalanceLimitExceeded):
		return c.Status(http.StatusUnprocessableEntity).JSON(errorResponse{Code: "BALANCE_LIMIT_EXCEEDED", Message: err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{Code: "INTERNAL", Message: "internal error"})
	}
}
