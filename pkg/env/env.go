// Package env reads process environment variables that are needed before
// the envconfig-backed configuration is loaded, such as the log format.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of the variable, or the fallback when it is
// unset or contains only whitespace.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return fallback
	}
	return val
}
