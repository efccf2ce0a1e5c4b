// Package money converts the decimal strings of a Trading212 export into the
// integer units the rest of the system computes with.
//
// Monetary amounts become YNAB milliunits: a "12.34" total is parsed at scale
// 2 and multiplied by 10, landing on 12340. The extra reserved digit keeps
// sub-cent values representable. Share counts are parsed at scale 10 into
// units of 1e-10 shares, so quantity ratios in position math stay exact under
// integer arithmetic.
package money

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	// MilliunitScale is the number of fractional digits parsed from money
	// strings before the milliunit multiplier is applied.
	MilliunitScale = 2

	// MilliunitMultiplier shifts a 2-decimal integer amount into milliunits.
	MilliunitMultiplier = 10

	// ShareScale is the number of fractional digits kept for share counts.
	ShareScale = 10

	shareUnit = 1e10
)

// ParseFixedPoint parses a plain decimal string into an integer.
//
// The fractional part is padded with trailing zeros to inputScale digits and
// truncated beyond it; there is no rounding. The concatenation of integer and
// fractional digits is parsed as one integer and multiplied by
// outputMultiplier. A non-numeric input is an error, and callers treat it as
// fatal.
func ParseFixedPoint(raw string, inputScale int, outputMultiplier int64) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty decimal string")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) < inputScale {
		frac += strings.Repeat("0", inputScale-len(frac))
	}
	frac = frac[:inputScale]

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}

	n *= outputMultiplier
	if neg {
		n = -n
	}
	return n, nil
}

// ParseMilliunits parses a money string into ledger milliunits.
// "100.00" parses to 100000.
func ParseMilliunits(raw string) (int64, error) {
	return ParseFixedPoint(raw, MilliunitScale, MilliunitMultiplier)
}

// ParseShareUnits parses a share count into 1e-10 share units.
func ParseShareUnits(raw string) (int64, error) {
	return ParseFixedPoint(raw, ShareScale, 1)
}

// FormatMilliunits renders milliunits back to a 2-decimal money string.
func FormatMilliunits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/1000, (v%1000)/10)
}

// FormatShareUnits renders 1e-10 share units back to a decimal string,
// trimming trailing fractional zeros. 15000000000 renders as "1.5".
func FormatShareUnits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / shareUnit
	frac := strings.TrimRight(fmt.Sprintf("%010d", v%shareUnit), "0")
	if frac == "" {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	return fmt.Sprintf("%s%d.%s", sign, whole, frac)
}

// ScaleRatio returns total*num/den rounded to the nearest integer.
//
// The intermediate product of a cost basis and a share-unit quantity
// overflows int64, so the computation goes through math/big.
func ScaleRatio(total, num, den int64) int64 {
	p := new(big.Int).Mul(big.NewInt(total), big.NewInt(num))
	d := big.NewInt(den)

	q, r := new(big.Int).QuoRem(p, d, new(big.Int))

	r.Abs(r)
	r.Lsh(r, 1)
	if r.Cmp(new(big.Int).Abs(d)) >= 0 {
		if (p.Sign() < 0) != (d.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q.Int64()
}
