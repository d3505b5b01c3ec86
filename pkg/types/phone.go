package types

import "strings"

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a stored phone number for display. Ten digits become
// "(xxx) xxx-xxxx"; eleven digits starting with 7 or 8 become
// "+7 (xxx) xxx-xx xx" or "8 (xxx) xxx-xx xx". Anything else is returned
// unchanged.
func FormatPhone(value string) string {
	d := PhoneDigits(value)
	switch {
	case len(d) == 10:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) == 11 && (d[0] == '7' || d[0] == '8'):
		prefix := "8"
		if d[0] == '7' {
			prefix = "+7"
		}
		return prefix + " (" + d[1:4] + ") " + d[4:7] + "-" + d[7:9] + " " + d[9:]
	default:
		return value
	}
}
