package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks a token column written with sealing enabled, so a
// plain-text read of a sealed row is detected as corrupt instead of
// handing ciphertext to the gateway.
const sealedPrefix = "sealed:v1:"

var errSealed = errors.New("token is sealed but no state key is configured")

type sealbox struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

func newSealbox(stateKey string) (*sealbox, error) {
	key := sha256.Sum256([]byte(stateKey))

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}

	return &sealbox{aead: aead}, nil
}

func (b *sealbox) seal(token string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(token), nil)

	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *sealbox) open(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed token: %w", err)
	}

	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("sealed token too short")
	}

	plain, err := b.aead.Open(nil, raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed token: %w", err)
	}

	return string(plain), nil
}

// openStored decodes a stored token column. Plain values pass through;
// sealed values require a matching box.
func openStored(box *sealbox, stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}

	if box == nil {
		return "", errSealed
	}

	return box.open(stored)
}
