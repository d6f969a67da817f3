package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen  = 32
	saltLen = 16
	ivLen   = 12

	// PBKDF2-HMAC-SHA256 work factor for the password wrap.
	kdfIterations = 210_000
)

// VaultKey is a 256-bit symmetric key used with AES-GCM.
type VaultKey struct {
	raw []byte
}

// GenerateVaultKey produces a fresh random vault key.
func GenerateVaultKey() (*VaultKey, error) {
	raw := make([]byte, keyLen)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate vault key: %w", err)
	}
	return &VaultKey{raw: raw}, nil
}

// ExportKey serializes a vault key to a portable base64 string.
func ExportKey(k *VaultKey) string {
	return base64.StdEncoding.EncodeToString(k.raw)
}

// ImportKey reverses ExportKey. The round trip is lossless.
func ImportKey(encoded string) (*VaultKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, locker_errors.ErrInvalidInput
	}
	if len(raw) != keyLen {
		return nil, locker_errors.ErrInvalidInput
	}
	return &VaultKey{raw: raw}, nil
}

// EncryptVaultKeyWithPassword wraps the vault key under a password-derived
// key. Output format: base64(salt(16) || iv(12) || ciphertext+tag).
// Salt and IV are fresh per call, so two wraps of the same key differ.
func EncryptVaultKeyWithPassword(k *VaultKey, password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	wrappingKey := deriveKey(password, salt)
	blob, err := sealGCM(wrappingKey, []byte(ExportKey(k)))
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, saltLen+len(blob))
	out = append(out, salt...)
	out = append(out, blob...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptVaultKeyWithPassword unwraps a blob produced by
// EncryptVaultKeyWithPassword. Any failure, malformed input or a GCM tag
// mismatch alike, surfaces as ErrDecryption.
func DecryptVaultKeyWithPassword(encoded, password string) (*VaultKey, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, locker_errors.ErrDecryption
	}
	if len(data) < saltLen+ivLen {
		return nil, locker_errors.ErrDecryption
	}

	salt := data[:saltLen]
	wrappingKey := deriveKey(password, salt)

	exported, err := openGCM(wrappingKey, data[saltLen:])
	if err != nil {
		return nil, locker_errors.ErrDecryption
	}

	k, err := ImportKey(string(exported))
	if err != nil {
		return nil, locker_errors.ErrDecryption
	}
	return k, nil
}

// EncryptWithVaultKey encrypts vault content directly under the vault key.
// Output format: base64(iv(12) || ciphertext+tag), fresh IV per call.
func EncryptWithVaultKey(plaintext string, k *VaultKey) (string, error) {
	blob, err := sealGCM(k.raw, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptWithVaultKey reverses EncryptWithVaultKey.
func DecryptWithVaultKey(encoded string, k *VaultKey) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", locker_errors.ErrDecryption
	}
	plaintext, err := openGCM(k.raw, data)
	if err != nil {
		return "", locker_errors.ErrDecryption
	}
	return string(plaintext), nil
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, keyLen, sha256.New)
}

// sealGCM encrypts with AES-256-GCM. Output: iv(12) || ciphertext+tag.
func sealGCM(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate IV: %w", err)
	}

	ct := gcm.Seal(nil, iv, plaintext, nil)

	out := make([]byte, 0, ivLen+len(ct))
	out = append(out, iv...)
	out = append(out, ct...)
	return out, nil
}

// openGCM decrypts data sealed by sealGCM.
func openGCM(key, data []byte) ([]byte, error) {
	if len(data) < ivLen {
		return nil, locker_errors.ErrDecryption
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, locker_errors.ErrDecryption
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, locker_errors.ErrDecryption
	}
	return gcm.Open(nil, data[:ivLen], data[ivLen:], nil)
}
