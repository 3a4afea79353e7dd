package ask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInline_ExtractsFromTagAndIsTokens(t *testing.T) {
	t.Parallel()
	f := parseInline(`from:bruce tag:invoice is:important budget review`)
	assert.Equal(t, []string{"bruce"}, f.from)
	assert.Equal(t, []string{"invoice"}, f.tags)
	assert.Equal(t, []string{"important"}, f.isFlags)
	assert.Equal(t, "budget review", f.cleaned)
}

func TestParseInline_RelativeWindowSetsDateFrom(t *testing.T) {
	t.Parallel()
	f := parseInline("last 7 days invoices")
	require.NotNil(t, f.dateFrom)
	require.NotNil(t, f.dateTo)
	assert.True(t, f.dateFrom.Before(*f.dateTo))
}

func TestParseInline_TurkishRelativeWindow(t *testing.T) {
	t.Parallel()
	f := parseInline("son 2 hafta faturalar")
	require.NotNil(t, f.dateFrom)
	assert.True(t, f.dateFrom.Before(*f.dateTo))
}

func TestParseInline_LatestFlag(t *testing.T) {
	t.Parallel()
	f := parseInline("en son fatura")
	assert.True(t, f.latest)
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "tr", detectLanguage("öğrenci faturası"))
	assert.Equal(t, "en", detectLanguage("student invoice"))
}

func TestCapSentences_TruncatesToN(t *testing.T) {
	t.Parallel()
	text := "One. Two. Three. Four."
	assert.Equal(t, "One. Two.", capSentences(text, 2))
}

func TestCapSentences_ShorterThanNReturnsUnchanged(t *testing.T) {
	t.Parallel()
	text := "Only one sentence."
	assert.Equal(t, text, capSentences(text, 5))
}

func TestNoMatchSentence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "No matching documents were found.", noMatchSentence("en"))
	assert.Equal(t, "Eşleşen belge bulunamadı.", noMatchSentence("tr"))
}
