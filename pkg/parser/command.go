package parser

import (
	"fmt"
	"regexp"
	"strings"

	"dexswap/pkg/token"
)

// SwapRequest represents a user's swap command
type SwapRequest struct {
	Amount string
	From   string
	To     string
}

// Pattern: [swap] <amount> <token> to <token>, where a token is a symbol or
// a 0x address. Matches: "1 ETH to USDC", "swap .5 weth to 0x1c7d...7238"
var swapPattern = regexp.MustCompile(`(?i)^(?:swap\s+)?(\d+\.?\d*|\.\d+)\s+([a-z0-9]+)\s+to\s+([a-z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 ETH to USDC"
//   - "1.5 ETH to LINK"
//   - "100 usdc to eth"
func ParseSwapCommand(command string) (*SwapRequest, error) {
	command = strings.Join(strings.Fields(command), " ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 ETH to USDC')")
	}

	return &SwapRequest{
		Amount: matches[1],
		From:   normalizeToken(matches[2]),
		To:     normalizeToken(matches[3]),
	}, nil
}

// ParseArgs parses command arguments such as ["1.5", "ETH", "to", "USDC"]
func ParseArgs(args []string) (*SwapRequest, error) {
	return ParseSwapCommand(strings.Join(args, " "))
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *SwapRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if req.From == "" {
		return fmt.Errorf("source token is required")
	}
	if req.To == "" {
		return fmt.Errorf("destination token is required")
	}
	if strings.EqualFold(req.From, req.To) {
		return fmt.Errorf("source and destination tokens must differ")
	}
	return nil
}

// Resolve looks both tokens up in the registry
func (r *SwapRequest) Resolve(reg *token.Registry) (token.Asset, token.Asset, error) {
	from, err := reg.Lookup(r.From)
	if err != nil {
		return token.Asset{}, token.Asset{}, err
	}
	to, err := reg.Lookup(r.To)
	if err != nil {
		return token.Asset{}, token.Asset{}, err
	}
	return from, to, nil
}

// normalizeToken upper-cases symbols and leaves addresses as typed
func normalizeToken(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		return s
	}
	return strings.ToUpper(s)
}
