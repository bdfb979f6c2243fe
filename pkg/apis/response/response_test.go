package response

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiErrorJSON(t *testing.T) {
	cause := errors.New("bad digit")
	in := NewMultiError(ErrResourceNotFound("register 10"), ErrInvalidParameter("address", cause))

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[
		{"code":10001,"message":"The resource register 10 was not found."},
		{"code":10002,"message":"The parameter address is invalid."}
	]}`, string(data))
	assert.Equal(t, "10001: The resource register 10 was not found.; 10002: The parameter address is invalid.: bad digit", in.Error())
}

func TestResponseErrorUnwrap(t *testing.T) {
	cause := errors.New("bad digit")
	err := ErrInvalidParameter("address", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeInvalidParameter, err.Code)
	assert.Equal(t, "10002: The parameter address is invalid.: bad digit", err.Error())
}
