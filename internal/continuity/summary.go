package continuity

import "strings"

// ExtractSummary returns the text after the last occurrence of marker in
// content, trimmed. A missing marker yields "".
func ExtractSummary(content, marker string) string {
	if marker == "" {
		return ""
	}
	idx := strings.LastIndex(content, marker)
	if idx < 0 {
		return ""
	}
	rest := content[idx+len(marker):]
	// Models often wrap the heading in markdown emphasis or follow it with a
	// colon.
	rest = strings.TrimLeft(rest, "*#:： \t")
	return strings.TrimSpace(rest)
}
