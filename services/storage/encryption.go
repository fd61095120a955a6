package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// encryptFile encrypts the file at localFilePath using AES-256 GCM with the given adminKey.
// It writes the encrypted data to a temporary file and returns the temporary file's path.
// The returned file contains the nonce prepended to the ciphertext.
func encryptFile(localFilePath, adminKey string) (string, error) {
	plaintext, err := os.ReadFile(localFilePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ciphertext, err := EncryptBytes(plaintext, adminKey)
	if err != nil {
		return "", err
	}

	tempDir := os.TempDir()
	tempFilePath := filepath.Join(tempDir, fmt.Sprintf("enc-%d", time.Now().UnixNano()))
	if err := os.WriteFile(tempFilePath, ciphertext, 0644); err != nil {
		return "", fmt.Errorf("failed to write encrypted file: %w", err)
	}

	return tempFilePath, nil
}

// EncryptBytes seals plaintext with AES-256 GCM under a key derived from
// adminKey via SHA-256. The nonce is prepended to the ciphertext so it can be
// recovered during decryption.
func EncryptBytes(plaintext []byte, adminKey string) ([]byte, error) {
	keyHash := sha256.Sum256([]byte(adminKey))

	block, err := aes.NewCipher(keyHash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBytes reverses EncryptBytes: it splits the prepended nonce off the
// ciphertext and opens it under the same derived key. Used when an admin
// fetches a KYC document for review.
func DecryptBytes(ciphertext []byte, adminKey string) ([]byte, error) {
	keyHash := sha256.Sum256([]byte(adminKey))

	block, err := aes.NewCipher(keyHash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
