package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// Abi wraps a parsed contract ABI
type Abi struct {
	parsed abi.ABI
}

// NewAbi parses a JSON ABI definition
func NewAbi(abiStr string) (*Abi, error) {
	a, err := abi.JSON(strings.NewReader(abiStr))
	if err != nil {
		return nil, err
	}

	return &Abi{parsed: a}, nil
}

func mustAbi(abiStr string) *Abi {
	a, err := NewAbi(abiStr)
	if err != nil {
		panic(err)
	}
	return a
}

// PackInput encodes a method call
func (a *Abi) PackInput(method string, params ...interface{}) ([]byte, error) {
	input, err := a.parsed.Pack(method, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	return input, nil
}

// UnpackOutput decodes a method's return data into ret
func (a *Abi) UnpackOutput(method string, ret interface{}, output []byte) error {
	m, ok := a.parsed.Methods[method]
	if !ok {
		return errors.Errorf("method %s not in abi", method)
	}
	unpacked, err := m.Outputs.Unpack(output)
	if err != nil {
		return errors.Wrap(err, "unpack output")
	}

	if err = m.Outputs.Copy(ret, unpacked); err != nil {
		return errors.Wrap(err, "copy output")
	}
	return nil
}

var (
	factoryAbi = mustAbi(FactoryABI)
	pairAbi    = mustAbi(PairABI)
	erc20Abi   = mustAbi(ERC20ABI)
	routerAbi  = mustAbi(RouterABI)
)
