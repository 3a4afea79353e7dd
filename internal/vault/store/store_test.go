package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorLiteral_NilOnEmpty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, vectorLiteral(nil))
	assert.Nil(t, vectorLiteral([]float32{}))
}

func TestVectorLiteral_FormatsAsPgvectorArray(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[1,2,3]", vectorLiteral([]float32{1, 2, 3}))
}

func TestNormalizeMatchArg(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hmrc", normalizeMatchArg("  HMRC  "))
	assert.Equal(t, "", normalizeMatchArg(""))
}
