package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// CardVault encrypts card numbers at rest and derives a stable fingerprint so
// duplicates can be found without decrypting.
type CardVault struct {
	key    []byte
	macKey []byte
}

func NewCardVault(key string) (*CardVault, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 characters, got %d", len(key))
	}
	macKey := blake2b.Sum256(append([]byte(key), "card-fingerprint"...))
	return &CardVault{key: []byte(key), macKey: macKey[:]}, nil
}

func (v *CardVault) Encrypt(data string) (string, error) {
	if data == "" {
		return "", nil
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], []byte(data))

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func (v *CardVault) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(ciphertext) < aes.BlockSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := ciphertext[:aes.BlockSize]
	ciphertext = ciphertext[aes.BlockSize:]

	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(ciphertext, ciphertext)

	return string(ciphertext), nil
}

// Fingerprint is a keyed BLAKE2b-256 hash of the card number, hex encoded.
// The MAC key is derived from the vault key, never the AES key itself.
func (v *CardVault) Fingerprint(cardNumber string) (string, error) {
	h, err := blake2b.New256(v.macKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	h.Write([]byte(cardNumber))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LastFour returns the trailing four characters, or the whole input if it is
// shorter.
func LastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
