package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weth = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	usdc = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	link = common.HexToAddress("0x00000000000000000000000000000000000000d1")
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(NewNative("ETH", "Ether", 18), weth, []Asset{
		NewERC20(weth, "WETH", "Wrapped Ether", 18, "", true),
		NewERC20(usdc, "USDC", "USD Coin", 6, "https://example.org/usdc.png", true),
		NewERC20(link, "LINK", "Chainlink", 18, "", false),
	})
	require.NoError(t, err)
	return r
}

func TestRegistryLookup(t *testing.T) {
	r := testRegistry(t)

	a, err := r.Lookup("usdc")
	require.NoError(t, err)
	assert.Equal(t, usdc, a.Address())
	assert.Equal(t, uint8(6), a.Decimals())
	logo, ok := a.LogoURI()
	assert.True(t, ok)
	assert.Equal(t, "https://example.org/usdc.png", logo)

	a, err = r.Lookup(link.Hex())
	require.NoError(t, err)
	assert.Equal(t, "LINK", a.Symbol())
	assert.False(t, a.Verified())
	_, ok = a.LogoURI()
	assert.False(t, ok)

	a, err = r.Lookup("eth")
	require.NoError(t, err)
	assert.True(t, a.IsNative())
	assert.Equal(t, NativeAddress, a.Address())

	_, err = r.Lookup("DOGE")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = r.Lookup("0x00000000000000000000000000000000000000ff")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestRegistryNormalize(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, weth, r.Normalize(NativeAddress))
	assert.Equal(t, usdc, r.Normalize(usdc))
	assert.True(t, IsNativeHex("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(NewNative("ETH", "Ether", 18), weth, []Asset{
		NewERC20(usdc, "USDC", "USD Coin", 6, "", true),
		NewERC20(usdc, "USDC2", "USD Coin", 6, "", true),
	})
	assert.Error(t, err)

	_, err = NewRegistry(NewNative("ETH", "Ether", 18), weth, []Asset{
		NewERC20(usdc, "eth", "Fake", 18, "", false),
	})
	assert.Error(t, err)

	_, err = NewRegistry(NewERC20(usdc, "USDC", "USD Coin", 6, "", true), weth, nil)
	assert.Error(t, err)
}

func TestRegistryOrder(t *testing.T) {
	r := testRegistry(t)
	all := r.All()
	require.Len(t, all, 4)
	assert.True(t, all[0].IsNative())

	sorted := r.Sorted()
	assert.Equal(t, "ETH", sorted[0].Symbol())
	assert.Equal(t, "WETH", sorted[3].Symbol())
}

func TestParseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1.5", 6, "1500000"},
		{".25", 2, "25"},
		{"2.", 2, "200"},
		{"0", 18, "0"},
		{"0.000001", 6, "1"},
		{"42", 0, "42"},
	}
	for _, tc := range cases {
		got, err := ParseUnits(tc.in, tc.decimals)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), tc.in)
	}

	for _, bad := range []string{"", ".", "-1", "abc", "1.2.3", "1e18", "0.0000001"} {
		_, err := ParseUnits(bad, 6)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "12", FormatUnits(big.NewInt(12_000_000), 6))
	assert.Equal(t, "0", FormatUnits(nil, 6))
	assert.Equal(t, "-0.5", FormatUnits(big.NewInt(-5), 1))
	assert.Equal(t, "7", FormatUnits(big.NewInt(7), 0))
	assert.InDelta(t, 1.5, ToFloat(big.NewInt(1_500_000), 6), 1e-12)
}
