package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwise/globals"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("  ")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("01/04/2025")
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct{ Problem string }
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"problem":"Japan"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "Japan", dst.Problem)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"problem":"a"} {"problem":"b"}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusTeapot, "nope")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestGetUserIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserIDFromRequest(req))
	req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, "u1"))
	assert.Equal(t, "u1", GetUserIDFromRequest(req))
}
