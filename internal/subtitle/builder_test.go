package subtitle

import (
	"strings"
	"testing"

	"github.com/seanowww/LyricSync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSegments() []models.Segment {
	return []models.Segment{
		{ID: 0, Start: 0, End: 2.5, Text: "hello"},
		{ID: 1, Start: 2.5, End: 5.0, Text: "world"},
	}
}

func TestBuildDocumentGolden(t *testing.T) {
	doc, err := BuildDocument(defaultSegments(), models.DefaultStyle(), 1920, 1080)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "[Script Info]\n"))
	assert.Contains(t, doc, "ScriptType: v4.00+\n")
	assert.Contains(t, doc, "PlayResX: 1920\n")
	assert.Contains(t, doc, "PlayResY: 1080\n")
	assert.Contains(t, doc, "WrapStyle: 2\n")
	assert.Contains(t, doc, "ScaledBorderAndShadow: yes\n")
	assert.Contains(t, doc, "[V4+ Styles]\n")
	assert.Contains(t, doc, "[Events]\n")

	dialogues := dialogueLines(doc)
	require.Len(t, dialogues, 2)
	assert.Equal(t, "Dialogue: 0,0:00:00.00,0:00:02.50,Default,,0,0,0,,hello", dialogues[0])
	assert.Equal(t, "Dialogue: 0,0:00:02.50,0:00:05.00,Default,,0,0,0,,world", dialogues[1])

	// no BOM, \n endings only
	assert.NotEqual(t, byte(0xEF), doc[0])
	assert.NotContains(t, doc, "\r")
}

func TestBuildDocumentStyleRow(t *testing.T) {
	st := models.DefaultStyle()
	st.FontFamily = "Georgia"
	st.FontSizePx = 36
	st.Color = "#6D5AE6"
	st.Bold = true
	st.StrokePx = 5
	st.Align = models.AlignTopRight

	doc, err := BuildDocument(defaultSegments(), st, 1280, 720)
	require.NoError(t, err)

	row := styleRow(t, doc)
	assert.Equal(t, "Style: Default,Georgia,36,&H00E65A6D,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,5,0,9,0,0,0,1", row)
}

func TestBuildDocumentPositionOverride(t *testing.T) {
	x, y := 960.0, 950.0
	st := models.DefaultStyle()
	st.PosX = &x
	st.PosY = &y
	st.Rotation = 5

	doc, err := BuildDocument(defaultSegments(), st, 1920, 1080)
	require.NoError(t, err)

	for _, line := range dialogueLines(doc) {
		_, text, ok := strings.Cut(line, ",,")
		require.True(t, ok)
		_, text, ok = strings.Cut(text, ",,")
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(text, `{\pos(960,950)\frz5}`), "text %q", text)
	}
}

func TestBuildDocumentRotationOnly(t *testing.T) {
	st := models.DefaultStyle()
	st.Rotation = 90

	doc, err := BuildDocument(defaultSegments(), st, 1920, 1080)
	require.NoError(t, err)
	assert.Contains(t, doc, `,,{\frz90}hello`)
}

func TestBuildDocumentNoOverride(t *testing.T) {
	doc, err := BuildDocument(defaultSegments(), models.DefaultStyle(), 1920, 1080)
	require.NoError(t, err)
	assert.NotContains(t, doc, "{")
}

func TestBuildDocumentEmptyText(t *testing.T) {
	segs := []models.Segment{{ID: 0, Start: 1, End: 1, Text: ""}}
	doc, err := BuildDocument(segs, models.DefaultStyle(), 640, 480)
	require.NoError(t, err)

	dialogues := dialogueLines(doc)
	require.Len(t, dialogues, 1)
	assert.Equal(t, "Dialogue: 0,0:00:01.00,0:00:01.00,Default,,0,0,0,,", dialogues[0])
}

func TestBuildDocumentEscapesText(t *testing.T) {
	segs := []models.Segment{{ID: 0, Start: 0, End: 1, Text: "a{b}\nc"}}
	doc, err := BuildDocument(segs, models.DefaultStyle(), 640, 480)
	require.NoError(t, err)
	assert.Contains(t, doc, `,,a\{b\}\Nc`)
}

func TestBuildDocumentOpacity(t *testing.T) {
	st := models.DefaultStyle()
	st.Opacity = 50
	doc, err := BuildDocument(defaultSegments(), st, 1920, 1080)
	require.NoError(t, err)
	assert.Contains(t, doc, ",&H80FFFFFF,")
}

func dialogueLines(doc string) []string {
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "Dialogue: ") {
			out = append(out, line)
		}
	}
	return out
}

func styleRow(t *testing.T, doc string) string {
	t.Helper()
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "Style: Default,") {
			return line
		}
	}
	t.Fatal("no style row in document")
	return ""
}
