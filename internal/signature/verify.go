package signature

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"go-attendance/internal/shared/metrics"
)

// MinKeyBits rejects keys weaker than what devices generate.
const MinKeyBits = 2048

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNotBound         = errors.New("no device key is bound")
	ErrBadSignature     = errors.New("signature does not verify")
)

// ParsePublicKeyPEM accepts a SPKI "PUBLIC KEY" PEM holding an RSA key of at
// least MinKeyBits.
func ParsePublicKeyPEM(s string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(s)))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidPublicKey)
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("%w: unexpected block %q", ErrInvalidPublicKey, block.Type)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey)
	}
	if pub.N.BitLen() < MinKeyBits {
		return nil, fmt.Errorf("%w: %d-bit key", ErrInvalidPublicKey, pub.N.BitLen())
	}
	return pub, nil
}

// Verify reports whether signatureB64 is a valid signature of message.
// Malformed input is a failed verification, never a panic.
func Verify(pub *rsa.PublicKey, message, signatureB64 string) bool {
	if pub == nil || signatureB64 == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(message))
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
}

// VerifyPEM is Verify against a stored PEM key. An unparsable key fails.
func VerifyPEM(publicKeyPEM, message, signatureB64 string) bool {
	pub, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false
	}
	return Verify(pub, message, signatureB64)
}

// VerifyBound checks sig against an employee's registered key, nil meaning no
// device is bound. Failures are counted in the trust_failures metric.
func VerifyBound(publicKeyPEM *string, message, sig string) error {
	if publicKeyPEM == nil || strings.TrimSpace(*publicKeyPEM) == "" {
		metrics.TrustFailures.WithLabelValues("device_not_bound").Inc()
		return ErrNotBound
	}
	if !VerifyPEM(*publicKeyPEM, message, strings.TrimSpace(sig)) {
		metrics.TrustFailures.WithLabelValues("bad_signature").Inc()
		return ErrBadSignature
	}
	return nil
}
