// Package ethtest serves a scripted in-process Ethereum JSON-RPC endpoint for
// tests. Contracts are registered by ABI and answer eth_call through Go
// handlers; sent transactions are recorded instead of executed.
package ethtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Handler answers one contract method. args are the decoded inputs; the
// returned values are packed with the method's outputs.
type Handler func(args []interface{}) ([]interface{}, error)

// Contract is a scripted contract living at one address
type Contract struct {
	abi      abi.ABI
	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

// On registers the handler for method
func (c *Contract) On(method string, h Handler) *Contract {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[method] = h
	return c
}

// Returns registers a handler that always returns values
func (c *Contract) Returns(method string, values ...interface{}) *Contract {
	return c.On(method, func([]interface{}) ([]interface{}, error) { return values, nil })
}

// Calls reports how often method was invoked through eth_call
func (c *Contract) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Chain is the fake node state
type Chain struct {
	mu        sync.Mutex
	contracts map[common.Address]*Contract
	balances  map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	sent      []*types.Transaction
	receipts  map[common.Hash]*types.Receipt

	ChainID     *big.Int
	GasPrice    *big.Int
	GasEstimate uint64
	// EstimateErr makes eth_estimateGas fail when set
	EstimateErr error
	// Reject makes eth_sendRawTransaction fail for transactions to the address
	Reject map[common.Address]error
}

func NewChain() *Chain {
	return &Chain{
		contracts:   make(map[common.Address]*Contract),
		balances:    make(map[common.Address]*big.Int),
		nonces:      make(map[common.Address]uint64),
		receipts:    make(map[common.Hash]*types.Receipt),
		ChainID:     big.NewInt(11155111),
		GasPrice:    big.NewInt(1_000_000_000),
		GasEstimate: 100000,
	}
}

// Deploy registers a contract at addr described by abiJSON
func (c *Chain) Deploy(addr common.Address, abiJSON string) *Contract {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	ct := &Contract{abi: parsed, handlers: make(map[string]Handler), calls: make(map[string]int)}

	c.mu.Lock()
	c.contracts[addr] = ct
	c.mu.Unlock()
	return ct
}

// SetBalance sets the native balance of addr
func (c *Chain) SetBalance(addr common.Address, wei *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = wei
}

// Sent returns the transactions broadcast so far, in order
func (c *Chain) Sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*types.Transaction, len(c.sent))
	copy(out, c.sent)
	return out
}

// Mine records a receipt for a sent transaction
func (c *Chain) Mine(hash common.Hash, block uint64, success bool) {
	status := types.ReceiptStatusFailed
	if success {
		status = types.ReceiptStatusSuccessful
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts[hash] = &types.Receipt{
		Status:            status,
		CumulativeGasUsed: 21000,
		GasUsed:           21000,
		Logs:              []*types.Log{},
		TxHash:            hash,
		BlockNumber:       new(big.Int).SetUint64(block),
	}
}

// Client returns an ethclient wired to this chain over an in-process RPC server
func (c *Chain) Client(t *testing.T) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	// Register under the standard "eth" namespace so methods map to eth_*
	if err := srv.RegisterName("eth", &service{chain: c}); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	client := ethclient.NewClient(gethrpc.DialInProc(srv))
	t.Cleanup(func() {
		client.Close()
		srv.Stop()
	})
	return client
}

// DecodeCall splits calldata into its method name and arguments
func DecodeCall(abiJSON string, data []byte) (string, []interface{}, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return "", nil, err
	}
	if len(data) < 4 {
		return "", nil, fmt.Errorf("calldata too short")
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return "", nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return "", nil, err
	}
	return m.Name, args, nil
}

// CallArgs is the transaction object of eth_call and eth_estimateGas.
// Newer clients send calldata as "input", older ones as "data".
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (a CallArgs) data() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

type service struct {
	chain *Chain
}

func (s *service) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(s.chain.ChainID), nil
}

func (s *service) Call(ctx context.Context, args CallArgs, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if args.To == nil {
		return nil, fmt.Errorf("contract creation not supported")
	}

	s.chain.mu.Lock()
	ct, ok := s.chain.contracts[*args.To]
	s.chain.mu.Unlock()
	if !ok {
		// calls to accounts without code return empty data
		return hexutil.Bytes{}, nil
	}

	data := args.data()
	if len(data) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}
	m, err := ct.abi.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: unknown selector")
	}
	in, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %v", err)
	}

	ct.mu.Lock()
	h, ok := ct.handlers[m.Name]
	ct.calls[m.Name]++
	ct.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s not scripted", m.Name)
	}

	out, err := h(in)
	if err != nil {
		return nil, err
	}
	packed, err := m.Outputs.Pack(out...)
	if err != nil {
		return nil, err
	}
	return packed, nil
}

func (s *service) EstimateGas(ctx context.Context, args CallArgs) (hexutil.Uint64, error) {
	if s.chain.EstimateErr != nil {
		return 0, s.chain.EstimateErr
	}
	return hexutil.Uint64(s.chain.GasEstimate), nil
}

func (s *service) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(s.chain.GasPrice), nil
}

func (s *service) GetBalance(ctx context.Context, addr common.Address, _ gethrpc.BlockNumberOrHash) (*hexutil.Big, error) {
	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()
	if bal, ok := s.chain.balances[addr]; ok {
		return (*hexutil.Big)(bal), nil
	}
	return (*hexutil.Big)(new(big.Int)), nil
}

func (s *service) GetTransactionCount(ctx context.Context, addr common.Address, _ gethrpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()
	return hexutil.Uint64(s.chain.nonces[addr]), nil
}

func (s *service) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(s.chain.ChainID), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid sender: %w", err)
	}

	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()
	if tx.To() != nil {
		if err := s.chain.Reject[*tx.To()]; err != nil {
			return common.Hash{}, err
		}
	}
	s.chain.sent = append(s.chain.sent, tx)
	s.chain.nonces[from]++
	return tx.Hash(), nil
}

func (s *service) GetTransactionByHash(ctx context.Context, hash common.Hash) (map[string]interface{}, error) {
	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()

	for _, tx := range s.chain.sent {
		if tx.Hash() != hash {
			continue
		}
		raw, err := json.Marshal(tx)
		if err != nil {
			return nil, err
		}
		var out map[string]interface{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		if r, ok := s.chain.receipts[hash]; ok {
			out["blockNumber"] = hexutil.EncodeBig(r.BlockNumber)
		}
		return out, nil
	}
	return nil, nil
}

func (s *service) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()
	return s.chain.receipts[hash], nil
}
