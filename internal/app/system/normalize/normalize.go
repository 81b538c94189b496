// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// UserID trims an identity-provider user id.
func UserID(s string) string {
	return strings.TrimSpace(s)
}

// DisplayName returns the trimmed name, or fallback when it is blank.
func DisplayName(s, fallback string) string {
	if n := strings.TrimSpace(s); n != "" {
		return n
	}
	return fallback
}
