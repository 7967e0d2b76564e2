// Package metrics holds the shared vocabulary of the normalization engine:
// provider sources, metric kinds, date keys, and the accumulation helpers
// every parser uses.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies a telemetry provider.
type Source string

const (
	SourceGitHub Source = "github"
	SourceCursor Source = "cursor"
	SourceClaude Source = "claude"
)

// Sources lists all known providers in backfill order.
var Sources = []Source{SourceGitHub, SourceCursor, SourceClaude}

// Valid reports whether s names a known provider.
func (s Source) Valid() bool {
	switch s {
	case SourceGitHub, SourceCursor, SourceClaude:
		return true
	}
	return false
}

// Kind identifies a stored metric family within a source.
type Kind string

const (
	// KindDaily is the per-day normalized aggregate every provider produces.
	KindDaily Kind = "daily"
	// KindSpend is the cursor month-to-date spend snapshot.
	KindSpend Kind = "spend"
)

// Valid reports whether k names a known metric kind.
func (k Kind) Valid() bool {
	return k == KindDaily || k == KindSpend
}

// DateLayout is the canonical calendar-date format used for byDate keys,
// API parameters and the metrics table.
const DateLayout = "2006-01-02"

// DateKey truncates a timestamp to its UTC calendar date (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// SafePercent derives num/den*100, defined as exactly 0 when the
// denominator is 0. Derived ratios are computed once, after accumulation.
func SafePercent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// SafeRate derives num/den as a 0..1 fraction, 0 when the denominator is 0.
func SafeRate(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// CentsToDollars converts an integer cent amount to dollars exactly.
func CentsToDollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DollarsFloat converts cents to a float64 dollar figure for JSON output.
// Conversion goes through decimal so 7000 cents is exactly 70, not 69.999....
func DollarsFloat(cents int64) float64 {
	f, _ := CentsToDollars(cents).Float64()
	return f
}

// GetOrInit returns the accumulator stored under key, inserting a freshly
// allocated zero value first if the key is absent. Accumulation code stays
// free of hidden initialization order dependencies.
func GetOrInit[K comparable, V any](m map[K]*V, key K) *V {
	if v, ok := m[key]; ok {
		return v
	}
	v := new(V)
	m[key] = v
	return v
}
