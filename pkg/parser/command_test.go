package parser

import (
	"testing"

	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		in         string
		amount     string
		from, to   string
		shouldFail bool
	}{
		{in: "swap 1 ETH to USDC", amount: "1", from: "ETH", to: "USDC"},
		{in: "1.5 eth to link", amount: "1.5", from: "ETH", to: "LINK"},
		{in: "  SWAP   .25 weth TO dai ", amount: ".25", from: "WETH", to: "DAI"},
		{in: "2 ETH to 0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", amount: "2", from: "ETH", to: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"},
		{in: "swap ETH to USDC", shouldFail: true},
		{in: "1 ETH USDC", shouldFail: true},
		{in: "-1 ETH to USDC", shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req, err := ParseSwapCommand(tt.in)
			if tt.shouldFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, req.Amount)
			assert.Equal(t, tt.from, req.From)
			assert.Equal(t, tt.to, req.To)
		})
	}
}

func TestValidateAndResolve(t *testing.T) {
	usdc := common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	reg, err := token.NewRegistry(token.NewNative("ETH", "Ether", 18), common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
		[]token.Asset{token.NewERC20(usdc, "USDC", "USD Coin", 6, "", true)})
	require.NoError(t, err)

	req, err := ParseArgs([]string{"1", "eth", "to", "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238"})
	require.NoError(t, err)
	require.NoError(t, ValidateSwapRequest(req))

	from, to, err := req.Resolve(reg)
	require.NoError(t, err)
	assert.True(t, from.IsNative())
	assert.Equal(t, usdc, to.Address())

	assert.Error(t, ValidateSwapRequest(&SwapRequest{Amount: "1", From: "ETH", To: "eth"}))

	_, _, err = (&SwapRequest{Amount: "1", From: "ETH", To: "DOGE"}).Resolve(reg)
	assert.ErrorIs(t, err, token.ErrUnknownToken)
}
