package vaulterr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_MapsEachKind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusBadRequest, KindClientInput.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, KindUpstreamAuth.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, KindUpstreamTransient.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindStore.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
}

func TestError_UnwrapsUnderlyingCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	err := Store(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "db_error: boom", err.Error())
}

func TestNotFound_HasNoUnderlyingCause(t *testing.T) {
	t.Parallel()
	err := NotFound("item_not_found")
	assert.Equal(t, "item_not_found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestConstructors_SetExpectedKindsAndCodes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindClientInput, ClientInput("bad", nil).Kind)
	assert.Equal(t, "embedding_provider_auth_error", UpstreamAuth(nil).Code)
	assert.Equal(t, "upstream_unavailable", UpstreamTransient(nil).Code)
}
