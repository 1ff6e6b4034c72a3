package token

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Registry holds the assets known at startup. It is never mutated after
// NewRegistry returns, so concurrent lookups are safe.
type Registry struct {
	wrapped   common.Address
	native    Asset
	byAddress map[common.Address]Asset
	bySymbol  map[string]Asset
	ordered   []Asset
}

// NewRegistry builds a registry from the native entry, the wrapped-native
// address and the static token list. Later duplicates of an address or symbol
// are rejected.
func NewRegistry(native Asset, wrapped common.Address, tokens []Asset) (*Registry, error) {
	if !native.IsNative() {
		return nil, fmt.Errorf("native entry must be of kind native, got %s", native.Kind())
	}

	r := &Registry{
		wrapped:   wrapped,
		native:    native,
		byAddress: make(map[common.Address]Asset, len(tokens)+1),
		bySymbol:  make(map[string]Asset, len(tokens)+1),
	}

	all := append([]Asset{native}, tokens...)
	for _, a := range all {
		sym := strings.ToUpper(a.Symbol())
		if _, exists := r.byAddress[a.Address()]; exists {
			return nil, fmt.Errorf("duplicate token address %s", a.Address().Hex())
		}
		if _, exists := r.bySymbol[sym]; exists {
			return nil, fmt.Errorf("duplicate token symbol %s", a.Symbol())
		}
		r.byAddress[a.Address()] = a
		r.bySymbol[sym] = a
		r.ordered = append(r.ordered, a)
	}

	return r, nil
}

// Native returns the synthetic native entry
func (r *Registry) Native() Asset {
	return r.native
}

// Wrapped returns the wrapped-native contract address
func (r *Registry) Wrapped() common.Address {
	return r.wrapped
}

// Normalize maps the native sentinel to the wrapped-native address
func (r *Registry) Normalize(addr common.Address) common.Address {
	if IsNativeAddress(addr) {
		return r.wrapped
	}
	return addr
}

// ByAddress looks up an asset by contract address
func (r *Registry) ByAddress(addr common.Address) (Asset, bool) {
	a, ok := r.byAddress[addr]
	return a, ok
}

// BySymbol looks up an asset by symbol, ignoring case
func (r *Registry) BySymbol(symbol string) (Asset, bool) {
	a, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return a, ok
}

// Lookup resolves either a hex address or a symbol
func (r *Registry) Lookup(query string) (Asset, error) {
	query = strings.TrimSpace(query)
	if common.IsHexAddress(query) {
		if a, ok := r.ByAddress(common.HexToAddress(query)); ok {
			return a, nil
		}
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownToken, query)
	}
	if a, ok := r.BySymbol(query); ok {
		return a, nil
	}
	return Asset{}, fmt.Errorf("%w: %s", ErrUnknownToken, query)
}

// All returns the assets in definition order, native first
func (r *Registry) All() []Asset {
	out := make([]Asset, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Sorted returns the assets ordered by symbol
func (r *Registry) Sorted() []Asset {
	out := r.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Symbol() < out[j].Symbol()
	})
	return out
}
