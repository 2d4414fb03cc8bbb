package tenant

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// AESGCMDecryptor implements CredentialDecryptor over AES-256-GCM, with
// the binding's context tag bound in as the AEAD's associated data — a
// tampered or mismatched tag fails authentication rather than silently
// decrypting under the wrong context, grounded on
// scalytics-KafClaw/internal/skills/oauth_crypto.go's AES-GCM blob format.
type AESGCMDecryptor struct {
	key []byte // 32 bytes, AES-256
}

// NewAESGCMDecryptor builds a decryptor over a 32-byte master key.
func NewAESGCMDecryptor(key []byte) (*AESGCMDecryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("tenant: AES-256-GCM key must be 32 bytes, got %d", len(key))
	}
	return &AESGCMDecryptor{key: key}, nil
}

// Encrypt seals plaintext under contextTag as associated data. Used by
// the channel-binding provisioning path (not the hot read path) to
// produce the blob CredentialBlob stores.
func (d *AESGCMDecryptor) Encrypt(plaintext []byte, contextTag string) ([]byte, error) {
	gcm, err := d.newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, []byte(contextTag))
	return append(nonce, sealed...), nil
}

// Decrypt implements CredentialDecryptor. blob is nonce||ciphertext, as
// produced by Encrypt.
func (d *AESGCMDecryptor) Decrypt(blob []byte, contextTag string) ([]byte, error) {
	gcm, err := d.newGCM()
	if err != nil {
		return nil, err
	}
	if len(blob) < gcm.NonceSize() {
		return nil, fmt.Errorf("tenant: credential blob shorter than nonce")
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(contextTag))
	if err != nil {
		return nil, ErrCryptoContextMismatch
	}
	return plaintext, nil
}

func (d *AESGCMDecryptor) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(d.key)
	if err != nil {
		return nil, fmt.Errorf("build cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
