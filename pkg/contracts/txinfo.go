package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxStatus is the lifecycle state of a submitted transaction
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// TxInfo summarizes a transaction and, once mined, its receipt
type TxInfo struct {
	Hash        string   `json:"hash"`
	Nonce       uint64   `json:"nonce"`
	To          string   `json:"to"`
	Value       string   `json:"value"`
	GasPrice    string   `json:"gas_price"`
	GasLimit    uint64   `json:"gas_limit"`
	Status      TxStatus `json:"status"`
	BlockNumber uint64   `json:"block_number,omitempty"`
	GasUsed     uint64   `json:"gas_used,omitempty"`
}

// TransactionInfo looks up a transaction and its receipt
func TransactionInfo(ctx context.Context, r ethereum.TransactionReader, hash common.Hash) (*TxInfo, error) {
	tx, isPending, err := r.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	info := &TxInfo{
		Hash:     tx.Hash().Hex(),
		Nonce:    tx.Nonce(),
		Value:    tx.Value().String(),
		GasPrice: tx.GasPrice().String(),
		GasLimit: tx.Gas(),
		Status:   TxPending,
	}
	if tx.To() != nil {
		info.To = tx.To().Hex()
	}
	if isPending {
		return info, nil
	}

	receipt, err := r.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	info.BlockNumber = receipt.BlockNumber.Uint64()
	info.GasUsed = receipt.GasUsed
	if receipt.Status == types.ReceiptStatusSuccessful {
		info.Status = TxConfirmed
	} else {
		info.Status = TxFailed
	}
	return info, nil
}
