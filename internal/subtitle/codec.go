// Package subtitle emits Advanced SubStation Alpha documents from timed
// segments and a style descriptor.
package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seanowww/LyricSync/internal/fault"
)

// FormatTime renders seconds as an ASS timestamp, H:MM:SS.CC. Negative
// input clamps to zero; centiseconds are truncated, not rounded; the
// hour field is not zero-padded.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds * 100)
	cs := total % 100
	s := (total / 100) % 60
	m := (total / 6000) % 60
	h := total / 360000
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// HexToASS converts a CSS #RGB or #RRGGBB color to the ASS &HAABBGGRR
// form. ASS stores channels in BGR order and its alpha is inverse:
// alphaPct 100 means fully opaque, byte 0x00.
func HexToASS(hex string, alphaPct int) (string, error) {
	if !strings.HasPrefix(hex, "#") {
		return "", fmt.Errorf("%w: %q", fault.ErrInvalidColor, hex)
	}
	c := hex[1:]
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	if len(c) != 6 {
		return "", fmt.Errorf("%w: %q", fault.ErrInvalidColor, hex)
	}
	rgb, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return "", fmt.Errorf("%w: %q", fault.ErrInvalidColor, hex)
	}
	if alphaPct < 0 {
		alphaPct = 0
	} else if alphaPct > 100 {
		alphaPct = 100
	}
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	a := ((100-uint64(alphaPct))*255 + 50) / 100
	return fmt.Sprintf("&H%02X%02X%02X%02X", a, b, g, r), nil
}

var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"{", "\\{",
	"}", "\\}",
)

// EscapeText escapes dialogue text. Braces and backslashes would
// otherwise open override blocks; newlines map to the ASS hard break.
// Commas survive untouched: Text is the tail field of a Dialogue row.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = textEscaper.Replace(text)
	return strings.ReplaceAll(text, "\n", "\\N")
}
