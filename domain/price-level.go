package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PriceLevel is a single (price, size) entry of one book side.
type PriceLevel struct {
	Price float64
	Size  float64
}

// UnmarshalJSON accepts a level encoded as a JSON array whose first two
// elements are either numbers or decimal strings. Any further elements
// (OKX appends liquidated orders and order count) are ignored.
func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) < 2 {
		return fmt.Errorf("price level needs at least 2 elements, got %d", len(fields))
	}

	price, err := parseQuantity(fields[0])
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	size, err := parseQuantity(fields[1])
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}

	l.Price = price
	l.Size = size
	return nil
}

// MarshalJSON writes the level the way the exchange does: two decimal strings.
func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{
		strconv.FormatFloat(l.Price, 'f', -1, 64),
		strconv.FormatFloat(l.Size, 'f', -1, 64),
	})
}

// parseQuantity accepts a JSON number or a decimal string. null and any
// other JSON type are rejected.
func parseQuantity(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty value")
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	case c == '-' || (c >= '0' && c <= '9'):
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number or string, got %s", raw)
	}
}
