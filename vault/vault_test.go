package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tripwise/models"
)

type memKeys map[string]*models.ProviderKeys

func (m memKeys) GetProviderKeys(_ context.Context, userID string) (*models.ProviderKeys, error) {
	if k, ok := m[userID]; ok {
		return k, nil
	}
	return &models.ProviderKeys{UserID: userID}, nil
}

type failingKeys struct{}

func (failingKeys) GetProviderKeys(context.Context, string) (*models.ProviderKeys, error) {
	return nil, errors.New("mongo down")
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := New("correct horse battery staple", nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, v.Enabled())

	ct, err := v.Encrypt("sk-live-123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, cipherPrefix))
	assert.NotContains(t, ct, "sk-live-123")
	assert.Equal(t, "sk-live-123", v.Decrypt(ct))

	again, err := v.Encrypt("sk-live-123")
	require.NoError(t, err)
	assert.NotEqual(t, ct, again, "nonces differ per call")

	empty, err := v.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPassThroughWithoutSecret(t *testing.T) {
	v, err := New("", nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, v.Enabled())

	ct, err := v.Encrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", ct)
	assert.Equal(t, "plain", v.Decrypt("plain"))
}

func TestDecryptFailureReturnsInput(t *testing.T) {
	v, err := New("key-a", nil, nil, nil)
	require.NoError(t, err)
	rotated, err := New("key-b", nil, nil, nil)
	require.NoError(t, err)

	ct, err := rotated.Encrypt("secret")
	require.NoError(t, err)

	for _, in := range []string{"legacy-plaintext", "v1.not*base64", "v1.AAAA", ct} {
		assert.Equal(t, in, v.Decrypt(in))
	}
}

func TestResolveKeyOrder(t *testing.T) {
	base, err := New("vault-secret", nil, nil, nil)
	require.NoError(t, err)
	sealed, err := base.Encrypt("user-openai")
	require.NoError(t, err)

	store := memKeys{
		"alice": {UserID: "alice", OpenAIKey: sealed, AnthropicKey: "legacy-anthropic"},
	}
	defaults := map[models.Provider]string{
		models.ProviderOpenAI: "env-openai",
		models.ProviderGemini: "env-gemini",
	}
	v, err := New("vault-secret", defaults, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	key, ok := v.ResolveKey(ctx, "alice", models.ProviderOpenAI)
	assert.True(t, ok)
	assert.Equal(t, "user-openai", key, "user key wins")

	key, ok = v.ResolveKey(ctx, "alice", models.ProviderAnthropic)
	assert.True(t, ok)
	assert.Equal(t, "legacy-anthropic", key, "undecryptable value passes through")

	key, ok = v.ResolveKey(ctx, "alice", models.ProviderGemini)
	assert.True(t, ok)
	assert.Equal(t, "env-gemini", key, "falls back to default")

	key, ok = v.ResolveKey(ctx, "", models.ProviderOpenAI)
	assert.True(t, ok)
	assert.Equal(t, "env-openai", key, "anonymous users get defaults")

	_, ok = v.ResolveKey(ctx, "bob", models.ProviderAnthropic)
	assert.False(t, ok)
}

func TestResolveKeyStoreErrorFallsBack(t *testing.T) {
	v, err := New("", map[models.Provider]string{models.ProviderGemini: "env"}, failingKeys{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	key, ok := v.ResolveKey(context.Background(), "alice", models.ProviderGemini)
	assert.True(t, ok)
	assert.Equal(t, "env", key)
}

func TestSealKeysClearsAbsent(t *testing.T) {
	v, err := New("vault-secret", nil, nil, nil)
	require.NoError(t, err)

	keys, err := v.SealKeys("alice", map[models.Provider]string{models.ProviderGemini: " g-key "})
	require.NoError(t, err)
	assert.Equal(t, "alice", keys.UserID)
	assert.Equal(t, "g-key", v.Decrypt(keys.GeminiKey))
	assert.Empty(t, keys.OpenAIKey)
	assert.Empty(t, keys.AnthropicKey)
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 44)
}
