package service

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"basebridge/internal/domain/entity"
)

// RateUnavailable is returned by ConvertAmount when no usable rate is loaded.
const RateUnavailable = "N/A"

// ConvertAmount converts amount with the ETH to fiat rate. In crypto mode the
// amount is ETH and the result is fiat with 2 decimals; in fiat mode the amount
// is fiat and the result is ETH with 6 decimals. An empty amount counts as zero.
// No fee or spread is applied. Rounding works on the exact binary value of the
// product and takes the larger magnitude on a tie, so 0.125 becomes "0.13".
func ConvertAmount(amount string, rate *float64, mode entity.TransferMode) string {
	if rate == nil || *rate == 0 || math.IsNaN(*rate) || math.IsInf(*rate, 0) {
		return RateUnavailable
	}

	amount = strings.TrimSpace(amount)
	value := 0.0
	if amount != "" {
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return RateUnavailable
		}
		value = v
	}

	if mode == entity.TransferModeFiat {
		return toFixed(value / *rate, 6)
	}
	return toFixed(value**rate, 2)
}

func toFixed(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return RateUnavailable
	}
	return new(big.Rat).SetFloat64(v).FloatString(places)
}
