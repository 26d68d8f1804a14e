package billing

import (
	"regexp"
	"strings"
)

// rtnPattern matches the Honduran taxpayer registry number: three
// numeric groups of 4, 4 and 6 digits, with or without dashes.
var rtnPattern = regexp.MustCompile(`^\d{4}-?\d{4}-?\d{6}$`)

// ValidRTN reports whether s is a syntactically valid RTN.
func ValidRTN(s string) bool {
	return rtnPattern.MatchString(s)
}

// NormalizeRTN returns the canonical dashed form of a valid RTN.
// Invalid input is returned unchanged.
func NormalizeRTN(s string) string {
	if !ValidRTN(s) {
		return s
	}
	digits := strings.ReplaceAll(s, "-", "")
	return digits[0:4] + "-" + digits[4:8] + "-" + digits[8:14]
}
