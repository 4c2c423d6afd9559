package util

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Clamp normalizes limit/offset query values to sane bounds.
func Clamp(limit, offset int) (int, int) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
