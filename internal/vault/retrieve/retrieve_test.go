package retrieve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOptions_Defaults(t *testing.T) {
	t.Parallel()
	opt := normalizeOptions(Options{})
	assert.Equal(t, 10, opt.Limit)
	assert.Equal(t, 0, opt.Offset)
	assert.Equal(t, 7, opt.DecayDays)
}

func TestNormalizeOptions_ClampsLimitAndDecay(t *testing.T) {
	t.Parallel()
	opt := normalizeOptions(Options{Limit: 10000, Offset: -5, DecayDays: 99999})
	assert.Equal(t, 200, opt.Limit)
	assert.Equal(t, 0, opt.Offset)
	assert.Equal(t, DefaultDecayDays, opt.DecayDays)
}

func TestLanguageConfig(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "turkish_unaccent", languageConfig("tr", ""))
	assert.Equal(t, "simple_unaccent", languageConfig("en", ""))
	assert.Equal(t, "turkish_unaccent", languageConfig("auto", "HMRC'den gelen en son e-posta çok önemliydi"))
	assert.Equal(t, "simple_unaccent", languageConfig("auto", "plain english text"))
}

func TestCoerceFinite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, coerceFinite(math.NaN()))
	assert.Equal(t, 0.0, coerceFinite(math.Inf(1)))
	assert.Equal(t, 0.0, coerceFinite(math.Inf(-1)))
	assert.Equal(t, 1.5, coerceFinite(1.5))
}

func TestVectorLiteral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[1,2,3]", vectorLiteral([]float32{1, 2, 3}))
	assert.Equal(t, "[]", vectorLiteral(nil))
}
