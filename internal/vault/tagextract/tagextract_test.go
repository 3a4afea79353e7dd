package tagextract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s4birli/MindVault/internal/vault/chatclient"
)

func TestExtract_NoProviderReturnsNil(t *testing.T) {
	t.Parallel()
	e := New(chatclient.New(nil), "tag-model", 0)
	tags := e.Extract(context.Background(), "Invoice due", "Please pay by Friday")
	assert.Nil(t, tags)
}

func TestExtract_NilExtractorReturnsNil(t *testing.T) {
	t.Parallel()
	var e *Extractor
	assert.Nil(t, e.Extract(context.Background(), "s", "b"))
}

func TestNew_DefaultsTextBudget(t *testing.T) {
	t.Parallel()
	e := New(chatclient.New(nil), "tag-model", 0)
	assert.Equal(t, 2000, e.textBudget)
}
