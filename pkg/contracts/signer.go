package contracts

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultGasLimit is used when gas estimation fails
const DefaultGasLimit uint64 = 300000

// Signer builds, signs and broadcasts legacy transactions from one key
type Signer struct {
	backend    Backend
	privateKey *ecdsa.PrivateKey
	from       common.Address
	chainID    *big.Int

	// GasPrice overrides the suggested gas price when set
	GasPrice *big.Int
	// GasLimit is the fallback used when estimation fails
	GasLimit uint64
}

// NewSigner parses a hex private key (with or without 0x)
func NewSigner(backend Backend, hexKey string, chainID int64) (*Signer, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("private key not configured")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}

	return &Signer{
		backend:    backend,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(*publicKeyECDSA),
		chainID:    big.NewInt(chainID),
		GasLimit:   DefaultGasLimit,
	}, nil
}

// Address returns the account the signer sends from
func (s *Signer) Address() common.Address {
	return s.from
}

// Send signs and broadcasts a call to `to` carrying value wei and data
func (s *Signer) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	if value == nil {
		value = big.NewInt(0)
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := s.gasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	gasLimit := s.GasLimit
	estimatedGas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err == nil {
		gasLimit = estimatedGas * 120 / 100 // Add 20% buffer
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

func (s *Signer) gasPrice(ctx context.Context) (*big.Int, error) {
	if s.GasPrice != nil {
		return s.GasPrice, nil
	}

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}
