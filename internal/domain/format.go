package domain

import (
	"strconv"
	"strings"
)

// FormatDecimal prints the shortest representation of v that keeps a decimal
// point, so 50 prints as "50.0".
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
