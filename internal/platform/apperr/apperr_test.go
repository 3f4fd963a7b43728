package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	cause := errors.New("ors: 503")
	err := fmt.Errorf("plan deliveries: %w", Wrap(cause, CodeMatrixUnavailable, "fetch matrix"))

	assert.Equal(t, CodeMatrixUnavailable, CodeOf(err))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[MATRIX_UNAVAILABLE] fetch matrix: ors: 503", errors.Unwrap(err).Error())

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(CodeInvalidInput, "bad")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(CodeNotFound, "nope")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(New(CodeInfeasible, "too much")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
	assert.Equal(t, CodeInternal, CodeOf(nil))
}
