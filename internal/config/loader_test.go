package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEmbedDim(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3072, defaultEmbedDim("text-embedding-3-large"))
	assert.Equal(t, 1536, defaultEmbedDim("text-embedding-3-small"))
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestIntFromEnv(t *testing.T) {
	t.Setenv("VAULT_TEST_INT", "42")
	assert.Equal(t, 42, intFromEnv("VAULT_TEST_INT", 7))
	assert.Equal(t, 7, intFromEnv("VAULT_TEST_INT_UNSET", 7))
}

func TestFloatFromEnv(t *testing.T) {
	t.Setenv("VAULT_TEST_FLOAT", "1.5")
	assert.Equal(t, 1.5, floatFromEnv("VAULT_TEST_FLOAT", 0.1))
	assert.Equal(t, 0.1, floatFromEnv("VAULT_TEST_FLOAT_UNSET", 0.1))
}

func TestBoolFromEnv(t *testing.T) {
	t.Setenv("VAULT_TEST_BOOL", "yes")
	assert.True(t, boolFromEnv("VAULT_TEST_BOOL", false))
	assert.False(t, boolFromEnv("VAULT_TEST_BOOL_UNSET", false))
	assert.True(t, boolFromEnv("VAULT_TEST_BOOL_UNSET", true))
}
