package fantasyapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is a loosely typed upstream number. The fantasy feeds emit the same
// field as a JSON number, a quoted string or null depending on the endpoint
// and the point in the season, so the raw text is kept as-is.
type Number struct {
	raw   string
	valid bool
}

func NewNumber(raw string) Number {
	return Number{raw: raw, valid: raw != ""}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*n = NewNumber(s)
		return nil
	}
	if len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')) {
		*n = NewNumber(string(data))
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		// booleans are never numbers, but they are not decode failures either
		*n = Number{}
		return nil
	}
	return fmt.Errorf("fantasyapi: cannot decode %s as number", string(data))
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// Present reports whether the field carried a value at all.
func (n Number) Present() bool {
	return n.valid
}

// Raw returns the text the upstream sent, without quotes.
func (n Number) Raw() string {
	return n.raw
}

// IsDigits reports whether the raw text is a non-empty run of ASCII digits,
// this is how "used on race N" chip fields are recognized.
func (n Number) IsDigits() bool {
	if !n.valid || n.raw == "" {
		return false
	}
	for _, r := range n.raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (n Number) Int() (int, bool) {
	if !n.valid {
		return 0, false
	}
	i, err := strconv.Atoi(n.raw)
	if err == nil {
		return i, true
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return 0, false
	}
	return int(d.IntPart()), true
}

func (n Number) Decimal() (decimal.Decimal, bool) {
	if !n.valid {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Truthy treats a present, non-zero number as true, ex. `iscaptain: 1`.
func (n Number) Truthy() bool {
	d, ok := n.Decimal()
	return ok && !d.IsZero()
}
