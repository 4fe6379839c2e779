package utils

import (
	"os"
	"strings"
)

// GetEnvOrDefault returns the trimmed value of an environment variable, or
// def when it is unset or blank.
func GetEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
