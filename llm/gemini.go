package llm

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"tripwise/models"
)

// GeminiAdapter talks to the Gemini API through the genai SDK.
type GeminiAdapter struct {
	cfg Config
}

func NewGeminiAdapter(cfg Config) *GeminiAdapter {
	return &GeminiAdapter{cfg: cfg.withDefaults("gemini-2.0-flash", 8192)}
}

func (a *GeminiAdapter) Name() models.Provider { return models.ProviderGemini }

func (a *GeminiAdapter) Generate(ctx context.Context, prompt, key string) (string, error) {
	return a.complete(ctx, key, generateCall(prompt, a.cfg.MaxTokens))
}

func (a *GeminiAdapter) Critique(ctx context.Context, strategyJSON, key string) (string, error) {
	return a.complete(ctx, key, critiqueCall(strategyJSON))
}

func (a *GeminiAdapter) Verify(ctx context.Context, key string) error {
	_, err := a.complete(ctx, key, verifyCall())
	if KindOf(err) == KindEmpty {
		return nil
	}
	return err
}

func (a *GeminiAdapter) complete(ctx context.Context, key string, c call) (string, error) {
	if key == "" {
		return "", providerErr(models.ProviderGemini, KindMissingKey, ErrMissingKey)
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if a.cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = a.cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", providerErr(models.ProviderGemini, KindBadRequest, err)
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(a.cfg.Temperature)),
		MaxOutputTokens: int32(c.maxTokens),
	}
	if c.system != "" {
		gc.SystemInstruction = genai.NewContentFromText(c.system, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, a.cfg.Model, genai.Text(c.user), gc)
	if err != nil {
		return "", providerErr(models.ProviderGemini, geminiKind(err), err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", providerErr(models.ProviderGemini, KindEmpty, ErrEmptyResponse)
	}
	return text, nil
}

var geminiErrorText = regexp.MustCompile(`^Error (\d{3}),(?:.*Status: ([A-Z_]*))?`)

// geminiKind classifies SDK errors by the HTTP code and status word the API
// reports. Errors that lost their type are matched on the SDK's message layout.
func geminiKind(err error) ErrorKind {
	if k := kindForTransport(err); k != KindUnknown {
		return k
	}
	if errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return geminiStatusKind(apiErr.Code, apiErr.Status, err.Error())
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return geminiStatusKind(apiErrPtr.Code, apiErrPtr.Status, err.Error())
	}
	msg := err.Error()
	if m := geminiErrorText.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return geminiStatusKind(code, m[2], msg)
	}
	return KindUnknown
}

func geminiStatusKind(code int, status, msg string) ErrorKind {
	// an invalid key is reported as 400 INVALID_ARGUMENT with this reason
	if strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid") {
		return KindAuth
	}
	switch status {
	case "RESOURCE_EXHAUSTED":
		return KindRateLimit
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return KindAuth
	case "DEADLINE_EXCEEDED":
		return KindTimeout
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION", "NOT_FOUND", "OUT_OF_RANGE":
		return KindBadRequest
	case "UNAVAILABLE", "INTERNAL":
		return KindNetwork
	}
	if code != 0 {
		return kindForStatus(code)
	}
	return KindUnknown
}
