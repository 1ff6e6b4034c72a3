package explorer

import (
	"math/big"
	"strconv"
	"time"
)

// Holder is one row of getTokenHolders
type Holder struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

// TokenTransfer is one row of tokentx
type TokenTransfer struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// TokenInfo is the getToken result
type TokenInfo struct {
	ContractAddress string `json:"contractAddress"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        string `json:"decimals"`
	TotalSupply     string `json:"totalSupply"`
	Type            string `json:"type"`
}

// Transaction is one row of txlist
type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
}

// Failed reports whether the transaction reverted
func (t Transaction) Failed() bool {
	return t.IsError == "1"
}

// Time parses the unix timestamp column
func Time(ts string) time.Time {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// Amount parses a base-unit decimal column, zero when malformed
func Amount(v string) *big.Int {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
