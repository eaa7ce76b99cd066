// Package utils holds small helpers shared by the server and scheduler.
package utils

import "strings"

// ParseCSV splits s on commas and returns the trimmed non-empty values,
// or nil when nothing remains.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
