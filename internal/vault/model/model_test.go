package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "invoice", NormalizeTag("  Invoice  "))
	assert.Equal(t, "", NormalizeTag("   "))
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"  Invoice ", "HMRC", "already-lower"} {
		once := NormalizeTag(in)
		twice := NormalizeTag(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeTags_DedupDropsEmpty(t *testing.T) {
	t.Parallel()
	out := NormalizeTags([]string{"Invoice", "invoice", "  ", "HMRC", "invoice"})
	assert.Equal(t, []string{"invoice", "hmrc"}, out)
}
