package util

import "strings"

var secretMarkers = []string{"SECRET", "PASSWORD", "PASSWD", "TOKEN", "API_KEY", "PRIVATE_KEY", "CREDENTIAL"}

// IsSecretKey reports whether an environment variable or config key name
// looks like it holds a credential.
func IsSecretKey(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// MaskSecret hides sensitive parts of a string for safe display in logs.
// If the string is not longer than visiblePrefix, it is fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
