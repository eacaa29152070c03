package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		write  func(http.ResponseWriter)
		status int
		msg    string
	}{
		{func(w http.ResponseWriter) { BadRequest(w, "bad") }, http.StatusBadRequest, "bad"},
		{func(w http.ResponseWriter) { Unauthorized(w, "who") }, http.StatusUnauthorized, "who"},
		{func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound, "gone"},
		{func(w http.ResponseWriter) { Conflict(w, "taken") }, http.StatusConflict, "taken"},
		{func(w http.ResponseWriter) { PayloadTooLarge(w, "big") }, http.StatusRequestEntityTooLarge, "big"},
		{func(w http.ResponseWriter) { BadGateway(w, "storage write failed") }, http.StatusBadGateway, "storage write failed"},
		{func(w http.ResponseWriter) { InternalError(w) }, http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.write(rec)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		var env Envelope
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
		assert.False(t, env.Success)
		assert.Equal(t, tc.msg, env.Error)
	}
}
