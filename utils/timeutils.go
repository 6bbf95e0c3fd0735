package utils

import (
	"time"
)

// Iso8601Now returns the current time in ISO8601 format
func Iso8601Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// Iso8601FromTime formats an absolute instant in ISO8601 format
func Iso8601FromTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ValidUntilFrom calculates the valid until timestamp for a polled snapshot
func ValidUntilFrom(baseEpoch int64, pollIntervalMS int) string {
	if baseEpoch <= 0 || pollIntervalMS <= 0 {
		return ""
	}
	return time.Unix(baseEpoch+int64(pollIntervalMS/1000), 0).UTC().Format(time.RFC3339)
}
