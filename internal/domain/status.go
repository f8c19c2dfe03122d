package domain

import "strings"

// Status is the position of a book in its lifecycle.
type Status string

// Book statuses.
const (
	StatusWishlist  Status = "wishlist"
	StatusToRead    Status = "toRead"
	StatusReading   Status = "reading"
	StatusRead      Status = "read"
	StatusAbandoned Status = "abandoned"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusWishlist, StatusToRead, StatusReading, StatusRead, StatusAbandoned}
}

// ParseStatus accepts the canonical vocabulary case-insensitively, plus the
// "unread" and "to_read" spellings of toRead.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wishlist":
		return StatusWishlist, nil
	case "toread", "to_read", "to-read", "unread":
		return StatusToRead, nil
	case "reading":
		return StatusReading, nil
	case "read", "finished":
		return StatusRead, nil
	case "abandoned":
		return StatusAbandoned, nil
	default:
		return "", invalidStatusf("unknown status %q", s)
	}
}

// Valid reports whether s is a canonical status.
func (s Status) Valid() bool {
	switch s {
	case StatusWishlist, StatusToRead, StatusReading, StatusRead, StatusAbandoned:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
