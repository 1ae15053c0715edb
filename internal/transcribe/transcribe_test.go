package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscriptSegmentsShape(t *testing.T) {
	data := []byte(`{
		"segments": [
			{"start": 0.0, "end": 2.4, "text": " hello there "},
			{"start": 2.4, "end": 5.1, "text": "second line"}
		]
	}`)

	segs, err := ParseTranscript(data)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, 0, segs[0].ID)
	assert.Equal(t, "hello there", segs[0].Text)
	assert.Equal(t, 2.4, segs[0].End)
	assert.Equal(t, 1, segs[1].ID)
}

func TestParseTranscriptWhisperCppShape(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"offsets": {"from": 0, "to": 1500}, "text": "first"},
			{"offsets": {"from": 1500, "to": 3250}, "text": "second"}
		]
	}`)

	segs, err := ParseTranscript(data)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, 0.0, segs[0].Start)
	assert.Equal(t, 1.5, segs[0].End)
	assert.Equal(t, 1.5, segs[1].Start)
	assert.Equal(t, 3.25, segs[1].End)
}

func TestParseTranscriptEmpty(t *testing.T) {
	segs, err := ParseTranscript([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestParseTranscriptMalformed(t *testing.T) {
	_, err := ParseTranscript([]byte(`not json`))
	assert.Error(t, err)
}
