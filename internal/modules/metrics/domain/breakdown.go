package domain

import (
	"fmt"
	"sort"
)

// Line is one labeled amount in a breakdown.
type Line struct {
	Label  string
	Amount int64
}

// Breakdown is a truncated ranking. More counts the lines cut off.
type Breakdown struct {
	Lines []Line
	More  int
}

// TopN ranks lines by amount, highest first. Equal amounts keep label
// order. A non-positive n keeps every line.
func TopN(lines []Line, n int) Breakdown {
	ranked := append([]Line(nil), lines...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Label < ranked[j].Label })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })
	if n <= 0 || len(ranked) <= n {
		return Breakdown{Lines: ranked}
	}
	return Breakdown{Lines: ranked[:n], More: len(ranked) - n}
}

// MoreLabel renders the remainder as "+K more", or "" when nothing was cut.
func (b Breakdown) MoreLabel() string {
	if b.More == 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", b.More)
}
