package cmd

import (
	"testing"

	"dexswap/config"
	"dexswap/pkg/alert"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		WrappedNative: "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14",
		NativeSymbol:  "ETH",
		NativeName:    "Sepolia Ether",
		Tokens: []config.TokenConfig{
			{Address: "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18, Verified: true},
			{Address: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", Symbol: "USDC", Decimals: 6},
			{Address: "0x779877A7B0D9E8603169DdbD7836e478b4624789", Symbol: "LINK"},
		},
	}

	reg, err := buildRegistry(cfg)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 4)
	assert.True(t, all[0].IsNative())
	assert.Equal(t, "ETH", all[0].Symbol())

	usdc, err := reg.Lookup("usdc")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), usdc.Decimals())
	assert.Equal(t, "USDC", usdc.Name())
	assert.False(t, usdc.Verified())

	link, err := reg.Lookup("LINK")
	require.NoError(t, err)
	assert.Equal(t, uint8(18), link.Decimals())

	assert.Equal(t, common.HexToAddress(cfg.WrappedNative), reg.Normalize(all[0].Address()))
}

func TestBuildRegistryRejectsDuplicates(t *testing.T) {
	cfg := &config.Config{
		WrappedNative: "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14",
		NativeSymbol:  "ETH",
		Tokens: []config.TokenConfig{
			{Address: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", Symbol: "USDC", Decimals: 6},
			{Address: "0x779877A7B0D9E8603169DdbD7836e478b4624789", Symbol: "usdc", Decimals: 6},
		},
	}
	_, err := buildRegistry(cfg)
	assert.Error(t, err)
}

func TestParsePriceCondition(t *testing.T) {
	cond, price, err := parsePriceCondition("above 4000")
	require.NoError(t, err)
	assert.Equal(t, alert.PriceAbove, cond)
	assert.Equal(t, 4000.0, price)

	cond, price, err = parsePriceCondition("< 0.004")
	require.NoError(t, err)
	assert.Equal(t, alert.PriceBelow, cond)
	assert.Equal(t, 0.004, price)

	for _, in := range []string{"", "above", "at 5", "below abc", "above 1 2"} {
		_, _, err := parsePriceCondition(in)
		assert.Error(t, err, in)
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("12345678-aaaa-bbbb"))
	assert.Equal(t, "abc", shortID("abc"))
}
