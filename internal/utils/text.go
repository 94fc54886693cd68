package utils

// Truncate returns the first max runes of s. Strings already within the
// limit are returned unchanged, so applying it twice is a no-op.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Clip truncates s to max runes and appends marker when anything was removed.
func Clip(s string, max int, marker string) string {
	out := Truncate(s, max)
	if len(out) < len(s) {
		return out + marker
	}
	return out
}
