package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// extractPlain decodes a text file. UTF-8 and BOM-marked UTF-16 are detected
// directly; anything else that is not valid UTF-8 is read as GB18030, the
// usual encoding of Chinese novel dumps.
func extractPlain(content []byte) (string, error) {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return string(content[len(bomUTF8):]), nil
	case bytes.HasPrefix(content, bomUTF16LE), bytes.HasPrefix(content, bomUTF16BE):
		return decode(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), content, "utf-16")
	case utf8.Valid(content):
		return string(content), nil
	}
	text, err := decode(simplifiedchinese.GB18030, content, "gb18030")
	if err != nil {
		return strings.ToValidUTF8(string(content), "\ufffd"), nil
	}
	return text, nil
}

func decode(enc encoding.Encoding, content []byte, label string) (string, error) {
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", label, err)
	}
	return string(out), nil
}
