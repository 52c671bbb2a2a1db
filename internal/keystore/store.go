// Package keystore keeps a device's signing key pair. The private half is
// generated inside the store and no method hands it back out.
package keystore

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
)

// KeyBits is the RSA modulus size of every generated device key.
const KeyBits = 2048

var (
	ErrKeyGeneration = errors.New("key generation unavailable")
	ErrNoBoundDevice = errors.New("no key stored on this device")
)

type Store interface {
	// Generate creates and persists a fresh key pair, replacing any
	// existing one, and returns the SPKI PEM public key.
	Generate(ctx context.Context) (string, error)
	PublicKeyPEM(ctx context.Context) (string, error)
	// Sign returns the base64 RSASSA-PKCS1-v1_5 SHA-256 signature of message.
	Sign(ctx context.Context, message string) (string, error)
	Exists(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

func generateKey(random io.Reader) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(random, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return key, nil
}

// EncodePublicKey renders pub as a "PUBLIC KEY" PEM block.
func EncodePublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func signMessage(key *rsa.PrivateKey, message string) (string, error) {
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
