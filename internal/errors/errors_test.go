package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := EmptySheet("raw.csv")
	wrapped := Wrap(inner, "decode raw sheet")

	assert.Equal(t, CodeEmptySheet, GetCode(wrapped))
	assert.True(t, Is(wrapped, inner))
	assert.Equal(t, "decode raw sheet: raw.csv has no header columns", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk gone"), "read %s", "x.xlsx")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		EmptySheet("t"):                     http.StatusBadRequest,
		ValidationError("dup"):              http.StatusBadRequest,
		InvalidInput("mode"):                http.StatusBadRequest,
		NotFound("session"):                 http.StatusNotFound,
		Wrap(NotFound("session"), "lookup"): http.StatusNotFound,
		fmt.Errorf("boom"):                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
