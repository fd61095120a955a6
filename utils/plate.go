package utils

import "strings"

// MaskPlate masks the middle of a licence plate for display, keeping the
// leading and trailing two characters. Plates of four characters or fewer are
// fully masked. Separators are preserved.
func MaskPlate(plate string) string {
	trimmed := strings.TrimSpace(plate)
	if trimmed == "" {
		return ""
	}

	runes := []rune(trimmed)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}

	var b strings.Builder
	for i, r := range runes {
		if i < 2 || i >= len(runes)-2 || r == '-' || r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('*')
	}
	return b.String()
}
