package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"title\":\"G\"}]"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	a := NewGeminiAdapter(Config{BaseURL: srv.URL + "/", Model: "gemini-test"})
	out, err := a.Generate(context.Background(), "plan Kenya", "g-key")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"G"}]`, out)

	_, err = a.Generate(context.Background(), "plan Kenya", "")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestGeminiKind(t *testing.T) {
	cases := map[string]ErrorKind{
		"Error 429, Message: quota, Status: RESOURCE_EXHAUSTED":                                 KindRateLimit,
		"Error 400, Message: API key not valid, Status: INVALID_ARGUMENT":                       KindAuth,
		"Error 400, Message: bad, Status: INVALID_ARGUMENT":                                     KindBadRequest,
		"Error 503, Message: overloaded, Status: UNAVAILABLE":                                   KindNetwork,
		"Error 400, Message: max_output_tokens 500 exceeds 429 limit, Status: INVALID_ARGUMENT": KindBadRequest,
		"Error 404, Message: model gemini-500 not found, Status: NOT_FOUND":                     KindBadRequest,
		"Error 502, Message: bad gateway, Status: ":                                             KindNetwork,
		"request 4290500 failed":                                                                KindUnknown,
		"something odd":                                                                         KindUnknown,
	}
	for msg, kind := range cases {
		assert.Equal(t, kind, geminiKind(errors.New(msg)), msg)
	}
	assert.Equal(t, KindTimeout, geminiKind(context.DeadlineExceeded))
}

func TestGeminiKindTypedError(t *testing.T) {
	cases := []struct {
		err  genai.APIError
		want ErrorKind
	}{
		{genai.APIError{Code: 429, Message: "quota 500 exceeded", Status: "RESOURCE_EXHAUSTED"}, KindRateLimit},
		{genai.APIError{Code: 403, Message: "denied", Status: "PERMISSION_DENIED"}, KindAuth},
		{genai.APIError{Code: 400, Message: "contents 429 is empty", Status: "INVALID_ARGUMENT"}, KindBadRequest},
		{genai.APIError{Code: 500, Message: "oops"}, KindNetwork},
	}
	for _, tc := range cases {
		err := fmt.Errorf("generate: %w", tc.err)
		assert.Equal(t, tc.want, geminiKind(err), tc.err.Message)
	}
}
