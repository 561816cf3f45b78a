package cliutil

import "strings"

// BoolToYesNo converts a boolean to "yes" or "no" for table display.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns value if non-empty, otherwise fallback.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// JoinOr joins items with ", ", or returns fallback if items is empty.
func JoinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
