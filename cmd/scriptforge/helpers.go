package main

import (
	"fmt"
	"strings"
	"time"

	"scriptforge/internal/textutil"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// preview returns the first line of s cut to limit runes.
func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if textutil.RuneLen(s) > limit {
		return textutil.HeadRunes(s, limit) + "…"
	}
	return s
}

func formatChars(n int) string {
	return fmt.Sprintf("%d chars", n)
}
