package checkout

import "strings"

// ValidPhone reports whether raw is an acceptable phone number: an
// optional leading plus followed by at least ten digits and nothing else.
func ValidPhone(raw string) bool {
	digits := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	if len(digits) < 10 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
