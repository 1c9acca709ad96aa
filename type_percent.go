package folio

import "fmt"

// Percent is a presentation-level percentage value (5.25 means 5.25%).
type Percent float64

// Equal compares two percentages with a fixed tolerance.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}
