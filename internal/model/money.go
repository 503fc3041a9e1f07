package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All amounts are Chilean pesos as int64. CLP has no minor units, so one
// unit is one peso and no cent scaling is needed anywhere.

// taxRate is the IVA rate baked into every listed price.
const taxRate = 0.19

// SplitGross decomposes a tax-inclusive amount into its net and tax parts.
// net = round(gross / 1.19), tax = gross - net, so net + tax == gross always
// holds even when the division does not land on a whole peso.
func SplitGross(gross int64) (net, tax int64) {
	net = int64(math.Round(float64(gross) / (1 + taxRate)))
	tax = gross - net
	return net, tax
}

// ParseAmount converts a string peso amount to int64.
// Backends serialize prices as strings ("4760" or "4760.00"); decimals are
// rounded since CLP carries none. Empty or malformed input yields 0.
func ParseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f))
}

// FormatCLP renders an amount the way the store displays it: "$4.760".
// Thousands are dot-separated per es-CL convention.
func FormatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return fmt.Sprintf("%s$%s", sign, strings.Join(groups, "."))
}
