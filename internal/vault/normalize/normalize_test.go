package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Stable(t *testing.T) {
	t.Parallel()
	h1 := ContentHash("Hi", "Body", "u@x", "m1")
	h2 := ContentHash("Hi", "Body", "u@x", "m1")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestContentHash_DiffersOnAnyField(t *testing.T) {
	t.Parallel()
	base := ContentHash("Hi", "Body", "u@x", "m1")
	assert.NotEqual(t, base, ContentHash("Hi2", "Body", "u@x", "m1"))
	assert.NotEqual(t, base, ContentHash("Hi", "Body2", "u@x", "m1"))
	assert.NotEqual(t, base, ContentHash("Hi", "Body", "u@y", "m1"))
	assert.NotEqual(t, base, ContentHash("Hi", "Body", "u@x", "m2"))
}

func TestNormalize_DedupIsDeterministicAcrossCalls(t *testing.T) {
	t.Parallel()
	r1 := Normalize("Hi", "Body", "u@x", "m1", "bob@example.com", "2024-01-01T00:00:00Z")
	r2 := Normalize("Hi", "Body", "u@x", "m1", "bob@example.com", "2024-01-01T00:00:00Z")
	assert.Equal(t, r1.ContentHash, r2.ContentHash)
}

func TestSenderDomain(t *testing.T) {
	t.Parallel()
	r := Normalize("", "body", "u", "m", "Bob <bob@Example.com>", "")
	assert.Equal(t, "example.com", r.SenderDomain)
}

func TestParseDate_FallbackOnEmpty(t *testing.T) {
	t.Parallel()
	r := Normalize("s", "b", "u", "m", "", "")
	assert.True(t, r.TSFallback)
	assert.False(t, r.TS.IsZero())
}

func TestParseDate_RFC3339(t *testing.T) {
	t.Parallel()
	r := Normalize("s", "b", "u", "m", "", "2024-01-01T00:00:00Z")
	require.False(t, r.TSFallback)
	assert.Equal(t, 2024, r.TS.Year())
}

func TestCleanBody_StripsQuotedReply(t *testing.T) {
	t.Parallel()
	r := Normalize("s", "Hello there\n> quoted line\nmore", "u", "m", "", "")
	assert.Equal(t, "Hello there", r.CleanBody)
}

func TestDetectLanguage_Turkish(t *testing.T) {
	t.Parallel()
	r := Normalize("s", "Merhaba, nasılsınız? Bugün çok güzel bir gün.", "u", "m", "", "")
	assert.Equal(t, "tr", r.Lang)
}

func TestDetectLanguage_English(t *testing.T) {
	t.Parallel()
	r := Normalize("s", "Hello, this is a perfectly ordinary english sentence.", "u", "m", "", "")
	assert.Equal(t, "en", r.Lang)
}
