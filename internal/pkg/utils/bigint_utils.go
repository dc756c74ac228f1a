package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EtherDecimals is the number of decimals of one ether in wei.
const EtherDecimals = 18

// FormatFixed formats amount (in base units) with exactly places decimals,
// rounding halves away from zero.
// Example: amount=1234560000000000000, decimals=18, places=4 => "1.2346"
func FormatFixed(amount *big.Int, decimals uint8, places int) string {
	if amount == nil {
		amount = new(big.Int)
	}
	return ratFromUnits(amount, decimals).FloatString(places)
}

// FormatEtherBalance renders a wei balance the way the wallet card shows it: 4 decimals.
func FormatEtherBalance(wei *big.Int) string {
	return FormatFixed(wei, EtherDecimals, 4)
}

func ratFromUnits(amount *big.Int, decimals uint8) *big.Rat {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(amount, divisor)
}

// ParseUnits parses a plain non-negative decimal string ("1", "0.5", ".25")
// into base units. Exponents, signs and more than decimals fractional digits
// are rejected.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}

	whole, frac, hasDot := strings.Cut(value, ".")
	if hasDot && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("malformed amount %q", value)
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("malformed amount %q", value)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("malformed amount %q", value)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimals", value, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	units, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", value)
	}
	return units, nil
}

// ParseEther parses an ether amount into wei.
func ParseEther(value string) (*big.Int, error) {
	return ParseUnits(value, EtherDecimals)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsAddress reports whether s is a 20-byte hex address. Mixed-case input must
// carry a valid EIP-55 checksum.
func IsAddress(s string) bool {
	if !common.IsHexAddress(s) {
		return false
	}
	hexPart := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return common.HexToAddress(s).Hex() == "0x"+hexPart
}
