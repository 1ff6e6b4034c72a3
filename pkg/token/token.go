// Package token defines the fungible assets the client can trade and the
// registry they are looked up in.
package token

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAddress is the sentinel address standing in for the native currency.
var NativeAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// Kind tags an Asset as either the native currency or an ERC-20 contract.
type Kind int

const (
	KindERC20 Kind = iota
	KindNative
)

func (k Kind) String() string {
	if k == KindNative {
		return "native"
	}
	return "erc20"
}

// Asset is an immutable token definition
type Asset struct {
	kind     Kind
	address  common.Address
	symbol   string
	name     string
	decimals uint8
	logoURI  string
	verified bool
}

// NewNative creates the synthetic native-currency entry
func NewNative(symbol, name string, decimals uint8) Asset {
	return Asset{
		kind:     KindNative,
		address:  NativeAddress,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
		verified: true,
	}
}

// NewERC20 creates an ERC-20 asset
func NewERC20(address common.Address, symbol, name string, decimals uint8, logoURI string, verified bool) Asset {
	return Asset{
		kind:     KindERC20,
		address:  address,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
		logoURI:  logoURI,
		verified: verified,
	}
}

func (a Asset) Kind() Kind              { return a.kind }
func (a Asset) IsNative() bool          { return a.kind == KindNative }
func (a Asset) Address() common.Address { return a.address }
func (a Asset) Symbol() string          { return a.symbol }
func (a Asset) Name() string            { return a.name }
func (a Asset) Decimals() uint8         { return a.decimals }
func (a Asset) Verified() bool          { return a.verified }

// LogoURI returns the logo and whether one is set
func (a Asset) LogoURI() (string, bool) {
	return a.logoURI, a.logoURI != ""
}

func (a Asset) String() string {
	return a.symbol
}

// IsNativeAddress reports whether addr is the native sentinel
func IsNativeAddress(addr common.Address) bool {
	return addr == NativeAddress
}

// IsNativeHex is IsNativeAddress for a hex string, ignoring case
func IsNativeHex(addr string) bool {
	return strings.EqualFold(addr, NativeAddress.Hex())
}
