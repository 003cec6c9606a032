package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// BodyDecryptor decrypts request payloads that clients encrypted against the
// platform's published RSA public key (admin login bodies arrive this way).
// Uses RSA-OAEP with SHA-256, matching what the web frontend produces.
type BodyDecryptor struct {
	key *rsa.PrivateKey
}

var ErrDecrypt = errors.New("cryptox: failed to decrypt payload")

// NewBodyDecryptor parses a PEM-encoded RSA private key (PKCS1 or PKCS8).
func NewBodyDecryptor(pemKey []byte) (*BodyDecryptor, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("cryptox: no PEM block in private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &BodyDecryptor{key: key}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("cryptox: private key is not RSA")
	}
	return &BodyDecryptor{key: key}, nil
}

// Decrypt decodes a base64 ciphertext and decrypts it with the private key.
func (d *BodyDecryptor) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, ErrDecrypt
	}

	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, d.key, raw, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// Encrypt is the inverse of Decrypt for the keypair's public half. Only used
// by tests and key provisioning tooling.
func (d *BodyDecryptor) Encrypt(plaintext []byte) (string, error) {
	raw, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &d.key.PublicKey, plaintext, nil)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// GenerateRSAKey generates a PEM-encoded (PKCS1) RSA private key.
func GenerateRSAKey(bits int) ([]byte, error) {
	if bits < 2048 {
		return nil, errors.New("cryptox: RSA key size must be at least 2048 bits")
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
