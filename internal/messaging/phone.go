package messaging

import "strings"

// NormalizeE164 ensures the value begins with + and only contains digits
// afterward. WhatsApp delivers sender IDs without the leading +.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

func sanitizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
