package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberPrefix returns the prefix shared by all ticket numbers of a year.
func NumberPrefix(year int) string {
	return fmt.Sprintf("%d-", year)
}

// FormatNumber renders a ticket number such as "2025-007". Sequences past
// 999 simply widen.
func FormatNumber(prefix string, sequence int) string {
	return fmt.Sprintf("%s%03d", prefix, sequence)
}

// maxSequenceDigits matches the digit run the postgres repository accepts
// when it scans for the highest sequence.
const maxSequenceDigits = 9

// ParseSequence extracts the numeric sequence from a ticket number with the
// given prefix. The suffix must be one to nine ASCII digits.
func ParseSequence(number, prefix string) (int, bool) {
	suffix, ok := strings.CutPrefix(number, prefix)
	if !ok || suffix == "" || len(suffix) > maxSequenceDigits {
		return 0, false
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return seq, true
}
