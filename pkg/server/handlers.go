package server

import (
	"errors"
	"strings"

	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/token"

	"github.com/gofiber/fiber/v2"
)

type tokenResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	Native   bool   `json:"native"`
	Verified bool   `json:"verified"`
	LogoURI  string `json:"logo_uri,omitempty"`
}

type routeResponse struct {
	Path        []string `json:"path"`
	Symbols     []string `json:"symbols"`
	AmountIn    string   `json:"amount_in"`
	AmountOut   string   `json:"amount_out"`
	PriceImpact float64  `json:"price_impact"`
	MultiHop    bool     `json:"multi_hop"`
}

type quoteResponse struct {
	TokenIn     string        `json:"token_in"`
	TokenOut    string        `json:"token_out"`
	AmountIn    string        `json:"amount_in"`
	AmountOut   string        `json:"amount_out"`
	Rate        float64       `json:"rate"`
	PriceImpact float64       `json:"price_impact"`
	HighImpact  bool          `json:"high_impact"`
	Route       routeResponse `json:"route"`
}

type pairRequest struct {
	in     token.Asset
	out    token.Asset
	amount string
}

func (s *Server) tokens(c *fiber.Ctx) error {
	assets := s.registry.All()
	out := make([]tokenResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, s.tokenResponse(a))
	}
	return c.JSON(out)
}

func (s *Server) quote(c *fiber.Ctx) error {
	req, err := s.parsePair(c)
	if err != nil {
		return err
	}

	q, err := s.quoter.Quote(c.UserContext(), quote.Request{TokenIn: req.in, TokenOut: req.out, AmountIn: req.amount})
	switch {
	case errors.Is(err, token.ErrInvalidAmount):
		return newInvalidAmount(err)
	case errors.Is(err, quote.ErrNoRoute):
		return ErrNoRoute
	case err != nil:
		s.log.WithError(err).WithField("pair", req.in.Symbol()+"/"+req.out.Symbol()).Error("quote failed")
		return ErrQuoteFailed
	}

	return c.JSON(quoteResponse{
		TokenIn:     q.TokenIn.Symbol(),
		TokenOut:    q.TokenOut.Symbol(),
		AmountIn:    q.AmountInString(),
		AmountOut:   q.AmountOutString(),
		Rate:        q.Rate,
		PriceImpact: q.PriceImpact,
		HighImpact:  route.HighImpact(q.PriceImpact, s.impactWarning),
		Route:       s.routeResponse(q.Route, req),
	})
}

func (s *Server) listRoutes(c *fiber.Ctx) error {
	req, err := s.parsePair(c)
	if err != nil {
		return err
	}

	amountIn, err := token.ParseUnits(req.amount, req.in.Decimals())
	if err != nil {
		return newInvalidAmount(err)
	}
	if amountIn.Sign() == 0 {
		return newInvalidAmount(route.ErrInvalidAmount)
	}

	routes, err := s.routes.FindAllRoutes(c.UserContext(), req.in.Address(), req.out.Address(), amountIn)
	if err != nil {
		s.log.WithError(err).WithField("pair", req.in.Symbol()+"/"+req.out.Symbol()).Error("route listing failed")
		return ErrQuoteFailed
	}
	if len(routes) == 0 {
		return ErrNoRoute
	}

	out := make([]routeResponse, 0, len(routes))
	for i := range routes {
		out = append(out, s.routeResponse(&routes[i], req))
	}
	return c.JSON(out)
}

func (s *Server) parsePair(c *fiber.Ctx) (*pairRequest, error) {
	in, err := s.lookup("in", c.Query("in"))
	if err != nil {
		return nil, err
	}
	out, err := s.lookup("out", c.Query("out"))
	if err != nil {
		return nil, err
	}
	if s.registry.Normalize(in.Address()) == s.registry.Normalize(out.Address()) {
		return nil, ErrSameToken
	}

	amount := strings.TrimSpace(c.Query("amount"))
	if amount == "" {
		return nil, ErrAmountRequired
	}
	return &pairRequest{in: in, out: out, amount: amount}, nil
}

func (s *Server) lookup(field, query string) (token.Asset, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return token.Asset{}, newTokenRequired(field)
	}
	a, err := s.registry.Lookup(query)
	if err != nil {
		return token.Asset{}, newUnknownToken(field, query)
	}
	return a, nil
}

func (s *Server) tokenResponse(a token.Asset) tokenResponse {
	logo, _ := a.LogoURI()
	return tokenResponse{
		Address:  a.Address().Hex(),
		Symbol:   a.Symbol(),
		Name:     a.Name(),
		Decimals: a.Decimals(),
		Native:   a.IsNative(),
		Verified: a.Verified(),
		LogoURI:  logo,
	}
}

func (s *Server) routeResponse(r *route.Route, req *pairRequest) routeResponse {
	resp := routeResponse{
		AmountIn:    token.FormatUnits(r.AmountIn, req.in.Decimals()),
		AmountOut:   token.FormatUnits(r.AmountOut, req.out.Decimals()),
		PriceImpact: r.PriceImpact,
		MultiHop:    r.MultiHop,
	}
	for _, addr := range r.Path {
		resp.Path = append(resp.Path, addr.Hex())
		if a, ok := s.registry.ByAddress(addr); ok {
			resp.Symbols = append(resp.Symbols, a.Symbol())
		} else {
			resp.Symbols = append(resp.Symbols, addr.Hex())
		}
	}
	return resp
}
