// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/respond"
)

func TestOKWithMode(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OKWithMode(recorder, map[string]int{"count": 2}, "demo")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":2},"mode":"demo"}`, recorder.Body.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app_error", apperr.Conflict("Username already taken"), http.StatusConflict, "CONFLICT"},
		{"validation", apperr.ValidationError("bad", apperr.FieldError{Field: "title", Message: "is required"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"plain_error_is_hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.status, recorder.Code)

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "pq:")
		})
	}
}
