package service

const (
	// DefaultLimit is applied when a caller passes no limit or an invalid one.
	DefaultLimit = 100
	// MaxLimit caps a single page of messages.
	MaxLimit = 500
)

// normalizeLimit maps any non-positive limit to the default and clamps the
// rest to the maximum.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
