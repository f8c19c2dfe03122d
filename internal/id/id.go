// Package id generates prefixed identifiers.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// temporarySuffixLen keeps temporary identifiers short enough to display.
const temporarySuffixLen = 8

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "list-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Temporary creates a timestamp-based identifier for records that have no
// authoritative key yet. Format: prefix-<unix millis>-<short nanoid>.
func Temporary(prefix string, now time.Time) string {
	suffix, err := gonanoid.New(temporarySuffixLen)
	if err != nil {
		// The timestamp alone is still unique enough for a single user's session.
		return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
