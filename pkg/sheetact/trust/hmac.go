package trust

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidKey indicates a key file that does not hold a usable key.
var ErrInvalidKey = errors.New("invalid signing key")

// KeySize is the size of the HMAC-SHA256 signing key in bytes.
const KeySize = 32

// PBKDF2Iterations is the iteration count used to derive a key from a
// passphrase.
const PBKDF2Iterations = 600000

// passphraseSalt binds derived keys to this application so the same
// passphrase yields the same key on every machine.
var passphraseSalt = []byte("sheetact-go/signature/v1")

// HMACBackend signs files with HMAC-SHA256 under a shared secret key.
// Signatures are stored hex encoded.
type HMACBackend struct {
	key []byte
}

// NewHMACBackend creates a backend using key. An empty key yields a
// backend that is not present.
func NewHMACBackend(key []byte) *HMACBackend {
	return &HMACBackend{key: bytes.Clone(key)}
}

// DeriveKey derives a signing key from a passphrase using PBKDF2-SHA-256.
func DeriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), passphraseSalt, PBKDF2Iterations, KeySize, sha256.New)
}

// LoadOrCreateKey reads the signing key at path, generating and storing a
// new random key only if the file does not exist. An existing file that is
// unreadable or not KeySize bytes long is an error and is left untouched.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) == KeySize:
		return data, nil
	case err == nil:
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrInvalidKey, path, len(data), KeySize)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return nil, fmt.Errorf("failed to rename key file: %w", err)
	}
	return key, nil
}

// Present reports whether a key is configured.
func (b *HMACBackend) Present() bool {
	return b != nil && len(b.key) > 0
}

// Sign returns the hex encoded HMAC of the content of dataPath.
func (b *HMACBackend) Sign(dataPath string) ([]byte, error) {
	if !b.Present() {
		return nil, fmt.Errorf("no signing key configured")
	}
	sum, err := b.sum(dataPath)
	if err != nil {
		return nil, err
	}
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out, nil
}

// Verify reports whether the signature at signaturePath matches dataPath.
// A malformed signature is invalid, not an error.
func (b *HMACBackend) Verify(signaturePath, dataPath string) (bool, error) {
	if !b.Present() {
		return false, nil
	}
	raw, err := os.ReadFile(signaturePath)
	if err != nil {
		return false, err
	}
	stored, err := hex.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return false, nil
	}
	sum, err := b.sum(dataPath)
	if err != nil {
		return false, err
	}
	return hmac.Equal(stored, sum), nil
}

// Close zeros the key material.
func (b *HMACBackend) Close() {
	for i := range b.key {
		b.key[i] = 0
	}
	b.key = nil
}

func (b *HMACBackend) sum(dataPath string) ([]byte, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mac := hmac.New(sha256.New, b.key)
	if _, err := io.Copy(mac, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", dataPath, err)
	}
	return mac.Sum(nil), nil
}
