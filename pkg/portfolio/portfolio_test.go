package portfolio

import (
	"context"
	"math/big"
	"testing"

	"dexswap/internal/ethtest"
	"dexswap/pkg/contracts"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalances(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	eth := token.NewNative("ETH", "Ether", 18)
	usdc := token.NewERC20(common.HexToAddress("0x00000000000000000000000000000000000000c1"), "USDC", "USD Coin", 6, "", true)
	broken := token.NewERC20(common.HexToAddress("0x00000000000000000000000000000000000000b1"), "BRK", "Broken", 18, "", false)

	chain := ethtest.NewChain()
	chain.SetBalance(owner, big.NewInt(1_500_000_000_000_000_000))
	chain.Deploy(usdc.Address(), contracts.ERC20ABI).Returns("balanceOf", big.NewInt(2_500_000))
	// BRK has no scripted balanceOf and reverts
	chain.Deploy(broken.Address(), contracts.ERC20ABI)

	tracker := NewTracker(chain.Client(t), nil)
	got := tracker.Balances(context.Background(), owner, []token.Asset{eth, usdc, broken})
	require.Len(t, got, 3)

	assert.Equal(t, "1.5", got[0].Formatted())
	assert.NoError(t, got[0].Err)
	assert.Equal(t, "2.5", got[1].Formatted())
	assert.Equal(t, "0", got[2].Formatted())
	assert.Error(t, got[2].Err)
}
