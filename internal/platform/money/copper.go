// Package money formats amounts held in the smallest currency unit.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CopperPerSilver = 100
	CopperPerGold   = 100 * CopperPerSilver
)

// Format renders copper as "12g 03s 40c". Leading zero denominations are
// omitted; zero renders as "0c".
func Format(copper int64) string {
	if copper == 0 {
		return "0c"
	}
	sign := ""
	if copper < 0 {
		sign = "-"
		copper = -copper
	}
	gold := copper / CopperPerGold
	silver := (copper % CopperPerGold) / CopperPerSilver
	rest := copper % CopperPerSilver

	parts := make([]string, 0, 3)
	switch {
	case gold > 0:
		parts = append(parts, fmt.Sprintf("%dg", gold), fmt.Sprintf("%02ds", silver), fmt.Sprintf("%02dc", rest))
	case silver > 0:
		parts = append(parts, fmt.Sprintf("%ds", silver), fmt.Sprintf("%02dc", rest))
	default:
		parts = append(parts, fmt.Sprintf("%dc", rest))
	}
	return sign + strings.Join(parts, " ")
}

// Parse reads either a bare copper count ("1250") or denominations such as
// "12g 3s 40c" or "-2s50c".
func Parse(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	units := map[byte]int64{'g': CopperPerGold, 's': CopperPerSilver, 'c': 1}
	var total int64
	start := 0
	for i := 0; i < len(s); i++ {
		unit, ok := units[s[i]]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s[start:i], 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
		total += n * unit
		start = i + 1
	}
	if start != len(s) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return sign * total, nil
}
