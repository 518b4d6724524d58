// Package common holds small parsing helpers shared by the binaries and the
// config layer.
package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the trimmed environment variable value, or fallback when it
// is unset or blank.
func GetEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// ParseDuration accepts a Go duration ("90s") or a bare number of seconds
// ("90"). Negative or unparsable values yield fallback.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// ParseInt parses a base-10 int, or returns fallback.
func ParseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// SplitList flattens comma separated entries, dropping blanks. Lists read
// from the environment arrive as a single comma joined string.
func SplitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
