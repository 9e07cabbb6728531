package core

import (
	"fmt"
	"strconv"
)

// FormatAmount renders minor units as a decimal string, e.g. 123456 -> "1234.56".
// Display only; all computation stays in integer minor units.
func FormatAmount(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	s := strconv.FormatInt(minor/100, 10) + "." + fmt.Sprintf("%02d", minor%100)
	if neg {
		return "-" + s
	}
	return s
}
