// Package vault encrypts per-user provider keys at rest and resolves the key
// a request should use for each provider.
package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"tripwise/models"
)

const (
	cipherPrefix = "v1."
	hkdfInfo     = "tripwise credential vault v1"
)

// KeyStore loads a user's stored (encrypted) provider keys. A user without a
// record yields an empty value and a nil error.
type KeyStore interface {
	GetProviderKeys(ctx context.Context, userID string) (*models.ProviderKeys, error)
}

type Vault struct {
	aead     cipher.AEAD
	defaults map[models.Provider]string
	store    KeyStore
	log      *zap.Logger
}

// New builds a vault. An empty secret disables encryption: Encrypt and
// Decrypt then pass values through unchanged.
func New(secret string, defaults map[models.Provider]string, store KeyStore, log *zap.Logger) (*Vault, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Vault{defaults: defaults, store: store, log: log}
	if secret == "" {
		return v, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}
	v.aead = aead
	return v, nil
}

// Enabled reports whether values are actually encrypted.
func (v *Vault) Enabled() bool { return v.aead != nil }

// Encrypt seals plaintext. Empty input stays empty so that clearing a key
// stores nothing.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || v.aead == nil {
		return plaintext, nil
	}
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return cipherPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. It never fails: anything that
// cannot be opened (legacy plaintext, rotated key, corruption) is returned
// unchanged, so callers cannot assume the output was really decrypted.
func (v *Vault) Decrypt(ciphertext string) string {
	pt, err := v.open(ciphertext)
	if err != nil {
		return ciphertext
	}
	return pt
}

var errNotSealed = errors.New("value is not vault ciphertext")

func (v *Vault) open(ciphertext string) (string, error) {
	if v.aead == nil || !strings.HasPrefix(ciphertext, cipherPrefix) {
		return "", errNotSealed
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(ciphertext, cipherPrefix))
	if err != nil {
		return "", err
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns+v.aead.Overhead() {
		return "", errNotSealed
	}
	pt, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// ResolveKey returns the key to use for provider p: the user's own key when
// present, otherwise the process default. Absence is a normal outcome.
func (v *Vault) ResolveKey(ctx context.Context, userID string, p models.Provider) (string, bool) {
	if userID != "" && v.store != nil {
		keys, err := v.store.GetProviderKeys(ctx, userID)
		if err != nil {
			v.log.Warn("load provider keys", zap.String("user", userID), zap.Error(err))
		} else if stored := keys.Get(p); stored != "" {
			key, err := v.open(stored)
			if err != nil {
				if v.Enabled() {
					v.log.Debug("stored key not decryptable, using as plaintext", zap.String("provider", string(p)))
				}
				key = stored
			}
			if key != "" {
				return key, true
			}
		}
	}
	if key := v.defaults[p]; key != "" {
		return key, true
	}
	return "", false
}

// SealKeys encrypts each provided plaintext key independently. Providers
// missing from plain (or mapped to "") end up cleared.
func (v *Vault) SealKeys(userID string, plain map[models.Provider]string) (models.ProviderKeys, error) {
	out := models.ProviderKeys{UserID: userID}
	for _, p := range models.Providers {
		ct, err := v.Encrypt(strings.TrimSpace(plain[p]))
		if err != nil {
			return models.ProviderKeys{}, fmt.Errorf("encrypt %s key: %w", p, err)
		}
		out.Set(p, ct)
	}
	return out, nil
}

// GenerateKey returns a fresh random secret suitable for ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
