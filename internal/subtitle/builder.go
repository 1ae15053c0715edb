package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seanowww/LyricSync/pkg/models"
)

const stylesFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"

const eventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

// BuildDocument composes a complete ASS v4+ script for the given
// segments, resolved style, and play resolution. Segments must already
// be sorted and non-overlapping. Output uses \n line endings, UTF-8
// without BOM, so byte-level golden comparisons stay stable.
//
// The play resolution must be the probed native size of the source
// video: coordinates, font sizes, and the browser preview all share
// that one canvas.
func BuildDocument(segs []models.Segment, st models.Style, playResX, playResY int) (string, error) {
	primary, err := HexToASS(st.Color, st.Opacity)
	if err != nil {
		return "", fmt.Errorf("primary colour: %w", err)
	}
	outline, err := HexToASS(st.StrokeColor, 100)
	if err != nil {
		return "", fmt.Errorf("outline colour: %w", err)
	}

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", playResX)
	fmt.Fprintf(&b, "PlayResY: %d\n", playResY)
	b.WriteString("WrapStyle: 2\n")
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString(stylesFormat + "\n")
	fmt.Fprintf(&b, "Style: Default,%s,%d,%s,&H000000FF,%s,&H00000000,%d,%d,0,0,100,100,0,0,1,%d,0,%d,0,0,0,1\n",
		st.FontFamily, st.FontSizePx, primary, outline,
		assBool(st.Bold), assBool(st.Italic), st.StrokePx, st.Align.Code())
	b.WriteString("\n")

	b.WriteString("[Events]\n")
	b.WriteString(eventsFormat + "\n")
	override := inlineOverride(st)
	for _, seg := range segs {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s%s\n",
			FormatTime(seg.Start), FormatTime(seg.End), override, EscapeText(seg.Text))
	}
	return b.String(), nil
}

// inlineOverride builds the per-event override prefix. \pos beats the
// style-row anchoring; \frz shares the same brace pair.
func inlineOverride(st models.Style) string {
	var tags []string
	if st.PosX != nil && st.PosY != nil {
		tags = append(tags, fmt.Sprintf("\\pos(%s,%s)", assNum(*st.PosX), assNum(*st.PosY)))
	}
	if st.Rotation != 0 {
		tags = append(tags, fmt.Sprintf("\\frz%d", st.Rotation))
	}
	if len(tags) == 0 {
		return ""
	}
	return "{" + strings.Join(tags, "") + "}"
}

func assBool(v bool) int {
	if v {
		return -1
	}
	return 0
}

func assNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
