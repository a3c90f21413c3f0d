// Package currency converts display amounts to and from minor units
// using ISO 4217 exponents.
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// exponents lists the currencies whose minor unit is not two decimal
// places. Everything absent defaults to 2.
var exponents = map[string]int{
	"BIF": 0,
	"CLP": 0,
	"DJF": 0,
	"GNF": 0,
	"ISK": 0,
	"JPY": 0,
	"KMF": 0,
	"KRW": 0,
	"PYG": 0,
	"RWF": 0,
	"UGX": 0,
	"UYI": 0,
	"VND": 0,
	"VUV": 0,
	"XAF": 0,
	"XOF": 0,
	"XPF": 0,
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"LYD": 3,
	"OMR": 3,
	"TND": 3,
}

// Exponent returns the number of minor-unit decimal places for a
// currency code.
func Exponent(code string) int {
	if e, ok := exponents[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return e
	}
	return 2
}

// Converter implements minor-unit conversion for ISO 4217 currencies.
type Converter struct{}

// New creates a converter.
func New() Converter { return Converter{} }

// ToMinorUnits parses a display amount like "19.99" and returns it in
// the currency's minor unit. Grouping commas and a leading currency
// sign are tolerated; anything else is an error.
func (Converter) ToMinorUnits(amount, code string) (int64, error) {
	s := strings.TrimSpace(amount)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	scale := math.Pow10(Exponent(code))
	return int64(math.Round(f * scale)), nil
}

// FromMinorUnits formats minor units as a display amount with the
// currency's exponent, e.g. 1999 USD -> "19.99", 500 JPY -> "500".
func (Converter) FromMinorUnits(units int64, code string) string {
	exp := Exponent(code)
	if exp == 0 {
		return strconv.FormatInt(units, 10)
	}
	div := int64(math.Pow10(exp))
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%0*d", sign, units/div, exp, units%div)
}
