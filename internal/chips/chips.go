// Package chips decodes chip usage out of a team snapshot and formats it for
// the summary tables.
package chips

import (
	"f1league/internal/fantasyapi"
	"slices"
	"strings"
)

type Code int

const (
	Limitless Code = iota
	Wildcard
	FinalFix
	NoNegative
	ExtraDRS
	AutoPilot
)

// Codes lists every chip in the order their fields are scanned.
var Codes = []Code{Limitless, Wildcard, FinalFix, NoNegative, ExtraDRS, AutoPilot}

var abbreviations = map[Code]string{
	Limitless:  "LL",
	Wildcard:   "WC",
	FinalFix:   "FF",
	NoNegative: "NN",
	ExtraDRS:   "3x",
	AutoPilot:  "AP",
}

var fields = map[Code]string{
	Limitless:  "limitlesstakengd",
	Wildcard:   "is_wildcard_taken_gd_id",
	FinalFix:   "finalfixtakengd",
	NoNegative: "nonigativetakengd",
	ExtraDRS:   "extradrstakengd",
	AutoPilot:  "autopilottakengd",
}

func (c Code) String() string {
	return abbreviations[c]
}

// Field returns the upstream field recording the race the chip was used on.
func (c Code) Field() string {
	return fields[c]
}

// None is rendered when no chip has been used.
const None = "–"

// Usage maps every used chip to the race it was consumed on.
type Usage map[Code]int

// FromFields reads chip usage from the raw snapshot fields. Only values made
// entirely of digits count as used, so `3` and `"3"` do but `-1`, `3.0` and
// null don't.
func FromFields(raw map[string]fantasyapi.Number) Usage {
	usage := Usage{}
	for _, code := range Codes {
		value, ok := raw[code.Field()]
		if !ok || !value.IsDigits() {
			continue
		}
		race, ok := value.Int()
		if !ok {
			continue
		}
		usage[code] = race
	}
	return usage
}

// Used reports whether the chip counts as used by race under mode.
func (u Usage) Used(code Code, race int, mode Mode) bool {
	usedOn, ok := u[code]
	if !ok {
		return false
	}
	return mode.includes(usedOn, race)
}

type Mode int

const (
	// Cumulative counts a chip used on this race or any earlier one.
	Cumulative Mode = iota
	// Exact counts a chip only on the race it was used on.
	Exact
)

func (m Mode) includes(usedOn, race int) bool {
	if m == Exact {
		return usedOn == race
	}
	return usedOn <= race
}

// Summary formats the chips used by race, ordered by the race they were
// used on, ex. "WC, LL".
func Summary(usage Usage, race int, mode Mode) string {
	var used []Code
	for _, code := range Codes {
		if usage.Used(code, race, mode) {
			used = append(used, code)
		}
	}
	if len(used) == 0 {
		return None
	}
	slices.SortStableFunc(used, func(a, b Code) int {
		return usage[a] - usage[b]
	})

	names := make([]string, len(used))
	for i, code := range used {
		names[i] = code.String()
	}
	return strings.Join(names, ", ")
}
