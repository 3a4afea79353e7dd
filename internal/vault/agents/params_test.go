package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringParam(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bruce", stringParam(map[string]any{"sender": "bruce"}, "sender"))
	assert.Equal(t, "", stringParam(map[string]any{}, "sender"))
	assert.Equal(t, "", stringParam(map[string]any{"sender": 5}, "sender"))
}

func TestIntParam_HandlesNumericTypesAndDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, intParam(map[string]any{"limit": 3}, "limit", 10))
	assert.Equal(t, 3, intParam(map[string]any{"limit": int64(3)}, "limit", 10))
	assert.Equal(t, 3, intParam(map[string]any{"limit": 3.0}, "limit", 10))
	assert.Equal(t, 10, intParam(map[string]any{}, "limit", 10))
}

func TestBoolParam(t *testing.T) {
	t.Parallel()
	assert.True(t, boolParam(map[string]any{"flag": true}, "flag"))
	assert.False(t, boolParam(map[string]any{}, "flag"))
}

func TestStringSliceParam_FromAnySliceAndStringSlice(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, stringSliceParam(map[string]any{"tags": []any{"a", "b", ""}}, "tags"))
	assert.Equal(t, []string{"x"}, stringSliceParam(map[string]any{"tags": []string{"x"}}, "tags"))
	assert.Nil(t, stringSliceParam(map[string]any{}, "tags"))
}

func TestTimeParam_ParsesRFC3339(t *testing.T) {
	t.Parallel()
	ts, ok := timeParam(map[string]any{"date_from": "2026-01-01T00:00:00Z"}, "date_from")
	assert.True(t, ok)
	assert.Equal(t, 2026, ts.Year())

	_, ok = timeParam(map[string]any{"date_from": "not-a-date"}, "date_from")
	assert.False(t, ok)

	_, ok = timeParam(map[string]any{}, "date_from")
	assert.False(t, ok)
}
