package textutil

import "unicode/utf8"

// RuneLen returns the number of code points in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// HeadRunes returns the first n code points of s, or s when shorter.
func HeadRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// TailRunes returns the last n code points of s, or s when shorter.
func TailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(s)
	if total <= n {
		return s
	}
	return s[byteOffset(s, total-n):]
}

// SliceRunes returns the code points in [start, end) of s. Bounds are clamped
// to [0, RuneLen(s)] and an inverted range yields "".
func SliceRunes(s string, start, end int) string {
	total := utf8.RuneCountInString(s)
	start = clamp(start, 0, total)
	end = clamp(end, 0, total)
	if end <= start {
		return ""
	}
	return s[byteOffset(s, start):byteOffset(s, end)]
}

// byteOffset maps a code point index to its byte offset; n == RuneLen(s)
// maps to len(s).
func byteOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
