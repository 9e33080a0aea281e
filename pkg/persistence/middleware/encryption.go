package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// envelopePrefix marks an encrypted field.
const envelopePrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into a config. Every key must decode to 32 bytes.
func ParseKeys(active string, fallback ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	decode := func(s string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("key is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("key must be 32 bytes (AES-256), got %d", len(key))
		}
		return key, nil
	}

	key, err := decode(active)
	if err != nil {
		return cfg, err
	}
	cfg.ActiveKey = key
	for _, s := range fallback {
		key, err := decode(s)
		if err != nil {
			return cfg, fmt.Errorf("fallback %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

type encryptionMiddleware struct {
	next   ports.QueryLog
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the query, code and
// error of each entry with AES-GCM. Timestamps, model and validity stay readable
// for monitoring. Entries written before encryption was enabled are returned as is.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.QueryLog) ports.QueryLog {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, entry domain.LogEntry) error {
	for _, field := range []*string{&entry.Query, &entry.Code, &entry.Error} {
		if *field == "" {
			continue
		}
		ciphertext, err := encrypt([]byte(*field), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt log entry: %w", err)
		}
		*field = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Append(ctx, entry)
}

func (m *encryptionMiddleware) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	entries, err := m.next.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		e := &entries[i]
		for _, field := range []*string{&e.Query, &e.Code, &e.Error} {
			encoded, ok := strings.CutPrefix(*field, envelopePrefix)
			if !ok {
				continue
			}
			ciphertext, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
			}
			plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt log entry: %w", err)
			}
			*field = string(plainText)
		}
	}
	return entries, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
