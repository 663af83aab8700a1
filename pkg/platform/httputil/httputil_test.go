package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "casetrack/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		_, ok := body["error_description"]
		assert.False(t, ok, "expected error_description to be omitted for internal errors")
	})

	t.Run("validation error includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "ob_number is required"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "ob_number is required", body["error_description"])
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeForbidden, "unable to remove subscription"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Details string `json:"details"`
	}

	t.Run("decodes known fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"details":"x"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "x", p.Details)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"details":"x","extra":1}`))
		var p payload
		err := DecodeJSON(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		err := DecodeJSON(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestExpected(t *testing.T) {
	assert.True(t, Expected(dErrors.New(dErrors.CodeNotFound, "x")))
	assert.True(t, Expected(dErrors.New(dErrors.CodeValidation, "x")))
	assert.False(t, Expected(dErrors.New(dErrors.CodeInternal, "x")))
	assert.False(t, Expected(errors.New("plain")))
}
