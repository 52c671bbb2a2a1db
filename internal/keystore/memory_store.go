package keystore

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	key    *rsa.PrivateKey
	random io.Reader
}

// NewMemoryStore returns a Store that forgets its key when the process exits.
func NewMemoryStore() Store {
	return &memoryStore{random: rand.Reader}
}

func (s *memoryStore) Generate(ctx context.Context) (string, error) {
	key, err := generateKey(s.random)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return EncodePublicKey(&key.PublicKey)
}

func (s *memoryStore) PublicKeyPEM(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return "", ErrNoBoundDevice
	}
	return EncodePublicKey(&s.key.PublicKey)
}

func (s *memoryStore) Sign(ctx context.Context, message string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return "", ErrNoBoundDevice
	}
	return signMessage(s.key, message)
}

func (s *memoryStore) Exists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil, nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.key = nil
	s.mu.Unlock()
	return nil
}
