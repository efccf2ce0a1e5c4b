// Package memo owns the textual grammar that embeds position state in ledger
// entry memos. YNAB offers no structured field for share counts, so trade
// entries carry "{quantity}x{ticker}[{isin}]" in free text and the position
// reconciler parses it back. The grammar lives only in this package; swapping
// the encoding never touches reconciliation logic.
package memo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/money"
)

// pattern recovers (quantity, isin) from a trade memo.
var pattern = regexp.MustCompile(`^([\d.]+)x.+\[(.*?)\]$`)

// DividendPrefix marks dividend memos, which the reconciler excludes from
// position replay.
const DividendPrefix = "Dividend - "

// Format renders the trade memo for a share quantity in 1e-10 units.
func Format(shareUnits int64, ticker, isin string) string {
	return fmt.Sprintf("%sx%s[%s]", money.FormatShareUnits(shareUnits), ticker, isin)
}

// FormatDividend renders a dividend memo: the trade grammar behind the
// dividend marker.
func FormatDividend(shareUnits int64, ticker, isin string) string {
	return DividendPrefix + Format(shareUnits, ticker, isin)
}

// IsDividend reports whether a memo carries the dividend marker.
func IsDividend(m string) bool {
	return strings.HasPrefix(m, DividendPrefix)
}

// Parse recovers the share quantity (1e-10 units) and ISIN from a trade memo.
// A memo produced by Format always parses; anything else is an error the
// caller treats as an internal-consistency failure.
func Parse(m string) (shareUnits int64, isin string, err error) {
	groups := pattern.FindStringSubmatch(m)
	if groups == nil {
		return 0, "", fmt.Errorf("memo %q does not match the position grammar", m)
	}
	shareUnits, err = money.ParseShareUnits(groups[1])
	if err != nil {
		return 0, "", fmt.Errorf("memo %q quantity: %w", m, err)
	}
	return shareUnits, groups[2], nil
}
