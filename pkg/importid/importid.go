// Package importid derives the deterministic, versioned identities that make
// ledger imports idempotent. An identity is the sole deduplication mechanism:
// re-importing the same source transaction produces the same identity, and
// the ledger rejects or reveals the duplicate.
package importid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Version is the identity scheme version. Bumping it invalidates every
// previously generated identity; the engine refuses to run against a ledger
// that still carries entries from an older version.
const Version = 14

// marker is shared by all versions of the scheme.
const marker = "T212-v"

// maxLen is the ledger's import-id field width. The version prefix consumes
// part of the budget.
const maxLen = 36

const seedTimeLayout = "2006-01-02 15:04:05"

// Prefix returns the current version prefix, e.g. "T212-v14:".
func Prefix() string {
	return fmt.Sprintf("%s%d:", marker, Version)
}

// Make derives the identity for a seed: the hex SHA-256 digest of the seed,
// prefixed with the current version and truncated to the field width.
// Identical seeds always yield identical identities.
func Make(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	id := Prefix() + hex.EncodeToString(sum[:])
	return id[:maxLen]
}

// SourceSeed builds the seed for a source-derived ledger entry.
func SourceSeed(ts time.Time, sourceID string) string {
	return ts.UTC().Format(seedTimeLayout) + ":" + sourceID
}

// HoldingSeed builds the seed for a synthetic holdings-value entry. It varies
// with the day and the value, so yesterday's entry goes permanently stale
// instead of being recreated, unless an uncleared entry exists to update.
func HoldingSeed(isin, date string, value int64) string {
	return fmt.Sprintf("%s:%s:%d", isin, date, value)
}

// IsCurrent reports whether id was generated by the current scheme version.
func IsCurrent(id string) bool {
	return strings.HasPrefix(id, Prefix())
}

// IsForeign reports whether id was generated by this system under a different
// scheme version. Such entries make re-imports unsafe.
func IsForeign(id string) bool {
	return strings.HasPrefix(id, marker) && !IsCurrent(id)
}
