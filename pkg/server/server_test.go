package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http/httptest"
	"testing"

	"dexswap/pkg/logging"
	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weth = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	usdc = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

type stubFinder struct {
	routes []route.Route
	err    error
}

func (f *stubFinder) FindBestRoute(ctx context.Context, in, out common.Address, amountIn *big.Int) (*route.Route, error) {
	if f.err != nil || len(f.routes) == 0 {
		return nil, f.err
	}
	r := f.routes[0]
	return &r, nil
}

func (f *stubFinder) FindAllRoutes(ctx context.Context, in, out common.Address, amountIn *big.Int) ([]route.Route, error) {
	return f.routes, f.err
}

func newTestServer(t *testing.T, f *stubFinder) *Server {
	t.Helper()
	reg, err := token.NewRegistry(token.NewNative("ETH", "Ether", 18), weth, []token.Asset{
		token.NewERC20(weth, "WETH", "Wrapped Ether", 18, "", true),
		token.NewERC20(usdc, "USDC", "USD Coin", 6, "https://example.org/usdc.png", true),
	})
	require.NoError(t, err)
	return New(reg, quote.NewQuoter(f), f, 5, logging.Discard())
}

func get(t *testing.T, s *Server, target string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestTokens(t *testing.T) {
	s := newTestServer(t, &stubFinder{})

	code, body := get(t, s, "/tokens")
	require.Equal(t, 200, code)

	var tokens []tokenResponse
	require.NoError(t, json.Unmarshal(body, &tokens))
	require.Len(t, tokens, 3)
	assert.Equal(t, "ETH", tokens[0].Symbol)
	assert.True(t, tokens[0].Native)
	assert.Equal(t, "https://example.org/usdc.png", tokens[2].LogoURI)
}

func TestQuote(t *testing.T) {
	oneEth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	s := newTestServer(t, &stubFinder{routes: []route.Route{{
		Path:        []common.Address{weth, usdc},
		AmountIn:    oneEth,
		AmountOut:   big.NewInt(2500_000000),
		PriceImpact: 0.1,
	}}})

	code, body := get(t, s, "/quote?in=ETH&out=usdc&amount=1")
	require.Equal(t, 200, code, string(body))

	var q quoteResponse
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, "ETH", q.TokenIn)
	assert.Equal(t, "2500", q.AmountOut)
	assert.InDelta(t, 2500, q.Rate, 1e-9)
	assert.False(t, q.HighImpact)
	assert.Equal(t, []string{"WETH", "USDC"}, q.Route.Symbols)
}

func TestQuoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		finder *stubFinder
		target string
		code   int
	}{
		{"missing in", &stubFinder{}, "/quote?out=USDC&amount=1", 400},
		{"unknown token", &stubFinder{}, "/quote?in=ETH&out=DOGE&amount=1", 400},
		{"same token", &stubFinder{}, "/quote?in=ETH&out=WETH&amount=1", 400},
		{"missing amount", &stubFinder{}, "/quote?in=ETH&out=USDC", 400},
		{"bad amount", &stubFinder{}, "/quote?in=ETH&out=USDC&amount=abc", 400},
		{"zero amount", &stubFinder{}, "/quote?in=ETH&out=USDC&amount=0", 400},
		{"no route", &stubFinder{}, "/quote?in=ETH&out=USDC&amount=1", 404},
		{"finder failure", &stubFinder{err: errors.New("rpc down")}, "/quote?in=ETH&out=USDC&amount=1", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.finder)
			code, body := get(t, s, tt.target)
			assert.Equal(t, tt.code, code, string(body))

			var resp map[string]string
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRoutes(t *testing.T) {
	dai := common.HexToAddress("0x00000000000000000000000000000000000000d1")
	s := newTestServer(t, &stubFinder{routes: []route.Route{
		{Path: []common.Address{weth, dai, usdc}, AmountIn: big.NewInt(1), AmountOut: big.NewInt(3_000000), MultiHop: true},
		{Path: []common.Address{weth, usdc}, AmountIn: big.NewInt(1), AmountOut: big.NewInt(2_000000)},
	}})

	code, body := get(t, s, "/routes?in=WETH&out=USDC&amount=0.5")
	require.Equal(t, 200, code, string(body))

	var routes []routeResponse
	require.NoError(t, json.Unmarshal(body, &routes))
	require.Len(t, routes, 2)
	assert.True(t, routes[0].MultiHop)
	assert.Equal(t, "3", routes[0].AmountOut)
	assert.Equal(t, dai.Hex(), routes[0].Symbols[1])
}

func TestRoutesEmpty(t *testing.T) {
	s := newTestServer(t, &stubFinder{})
	code, _ := get(t, s, "/routes?in=WETH&out=USDC&amount=1")
	assert.Equal(t, 404, code)
}
