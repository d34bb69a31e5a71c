package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LooseInt decodes a JSON number or numeric string into an int.
// Fractions are truncated. Set is false when the field was absent or null.
type LooseInt struct {
	Value int
	Set   bool
}

func (n *LooseInt) UnmarshalJSON(b []byte) error {
	f, ok, err := parseLoose(b)
	if err != nil || !ok {
		return err
	}
	t := math.Trunc(f)
	if t > math.MaxInt32 || t < math.MinInt32 {
		return fmt.Errorf("%s is not a number in range", bytes.TrimSpace(b))
	}
	n.Value, n.Set = int(t), true
	return nil
}

func (n LooseInt) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}

// LooseNumber decodes a JSON number or numeric string into a float64.
type LooseNumber struct {
	Value float64
	Set   bool
}

func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	f, ok, err := parseLoose(b)
	if err != nil || !ok {
		return err
	}
	n.Value, n.Set = f, true
	return nil
}

func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func parseLoose(b []byte) (float64, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false, nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%q is not a number", s)
	}
	return f, true, nil
}
