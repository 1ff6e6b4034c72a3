// Package server exposes quotes, routes and the token list over HTTP.
package server

import (
	"context"
	"errors"
	"math/big"

	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Quoter is implemented by *quote.Quoter
type Quoter interface {
	Quote(ctx context.Context, req quote.Request) (*quote.Quote, error)
}

// RouteLister is implemented by *route.Finder
type RouteLister interface {
	FindAllRoutes(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) ([]route.Route, error)
}

type Server struct {
	app           *fiber.App
	registry      *token.Registry
	quoter        Quoter
	routes        RouteLister
	impactWarning float64
	log           logrus.FieldLogger
}

// New builds the app and registers its handlers. impactWarning is the
// percentage above which a quote is flagged as high impact.
func New(registry *token.Registry, quoter Quoter, routes RouteLister, impactWarning float64, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		registry:      registry,
		quoter:        quoter,
		routes:        routes,
		impactWarning: impactWarning,
		log:           log,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Get("/tokens", s.tokens)
	s.app.Get("/quote", s.quote)
	s.app.Get("/routes", s.listRoutes)
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("quote server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if fe == nil {
		s.log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
