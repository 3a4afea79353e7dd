package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_EmailKindUsesFixedLayout(t *testing.T) {
	t.Parallel()
	chunks := Dispatch("email", "Subject line", strings.Repeat("a", 3000), DefaultOptions())
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Subject line", chunks[0].Text)
}

func TestDispatch_OtherKindUsesWindow(t *testing.T) {
	t.Parallel()
	chunks := Dispatch("pdf", "ignored subject", strings.Repeat("b", 3000), DefaultOptions())
	require.NotEmpty(t, chunks)
	assert.NotEqual(t, "ignored subject", chunks[0].Text)
}

func TestWindow_AdjacentChunksOverlapWithinBound(t *testing.T) {
	t.Parallel()
	opt := Options{TargetChars: 100, OverlapChars: 20, MinJoinChars: 10, MinKeepChars: 5}
	body := strings.Repeat("x", 500)
	chunks := Window(body, opt)
	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 0; i+1 < len(chunks); i++ {
		a := []rune(chunks[i].Text)
		b := []rune(chunks[i+1].Text)
		maxOverlap := opt.OverlapChars
		overlap := 0
		for k := 1; k <= maxOverlap && k <= len(a) && k <= len(b); k++ {
			if string(a[len(a)-k:]) == string(b[:k]) {
				overlap = k
			}
		}
		assert.LessOrEqual(t, overlap, opt.OverlapChars)
	}
}

func TestWindow_DropsChunksBelowMinKeep(t *testing.T) {
	t.Parallel()
	opt := Options{TargetChars: 50, OverlapChars: 0, MinJoinChars: 0, MinKeepChars: 30}
	chunks := Window("short", opt)
	assert.Empty(t, chunks)
}

func TestWindow_EmptyBodyProducesNoChunks(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Window("", DefaultOptions()))
}

func TestEmail_SubjectCappedAt300(t *testing.T) {
	t.Parallel()
	subj := strings.Repeat("s", 400)
	chunks := Email(subj, "body text")
	require.NotEmpty(t, chunks)
	assert.Len(t, []rune(chunks[0].Text), 300)
}

func TestEmail_FirstBodyChunkCappedAt1000(t *testing.T) {
	t.Parallel()
	body := strings.Repeat("b", 5000)
	chunks := Email("subj", body)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.LessOrEqual(t, len([]rune(chunks[1].Text)), 1000)
}
