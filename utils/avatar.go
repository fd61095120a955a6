package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// AvatarURL returns the avatar URL to display for a user. When the user has an
// uploaded avatar its URL wins; otherwise an initials-based placeholder URL is
// generated from the display name.
func AvatarURL(uploadedURL, displayName string) string {
	if uploadedURL != "" {
		return uploadedURL
	}
	initials := Initials(displayName)
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&size=128", url.QueryEscape(initials))
}

// Initials extracts up to two uppercase initials from a display name.
// Empty or whitespace-only names fall back to "?".
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	first := strings.ToUpper(string([]rune(fields[0])[0]))
	if len(fields) == 1 {
		return first
	}
	last := strings.ToUpper(string([]rune(fields[len(fields)-1])[0]))
	return first + last
}
