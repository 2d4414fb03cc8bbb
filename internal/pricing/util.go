package pricing

import "strings"

// normalizeKey lowercases and trims a fragment for catalog/alias lookup.
// Only the looked-up fragment is normalized: catalog keys and aliases are
// compared exactly as configured, and neither the config loader nor the
// catalog constructors lowercase or trim them.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
