package storage

import "strings"

// identityKey builds the logical identity of a cached entity row.
func identityKey(baseName, variant string) string {
	return strings.ToLower(baseName) + "|" + strings.ToLower(variant)
}

// fingerprint condenses the fields whose change should be reported as an
// update. Field order matters.
func fingerprint(fields ...string) string {
	return strings.Join(fields, "\x1f")
}
