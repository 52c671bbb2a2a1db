package signature

import (
	"context"
	"errors"
	"fmt"

	"go-attendance/internal/keystore"
	"go-attendance/internal/shared/clock"
)

var (
	ErrKeyGeneration = errors.New("device cannot generate keys")
	ErrNoBoundDevice = errors.New("device is not bound")
	ErrAlreadyBound  = errors.New("device already holds a key")
)

// Identity is who the device is being bound for.
type Identity struct {
	ActorID string
	Email   string
}

// SignedIntent is what a device submits for one check-in or check-out.
type SignedIntent struct {
	ActorID   string
	Intent    Intent
	Message   string
	Signature string
}

// Device is the client half of the protocol.
type Device struct {
	store keystore.Store
	zone  *clock.Zone
}

func NewDevice(store keystore.Store, zone *clock.Zone) *Device {
	return &Device{store: store, zone: zone}
}

// BindDevice creates the device key and returns the public PEM to register.
// An existing key is never replaced; it must be cleared first.
func (d *Device) BindDevice(ctx context.Context, id Identity) (string, error) {
	if id.ActorID == "" {
		return "", errors.New("actor id is required")
	}
	exists, err := d.store.Exists(ctx)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyBound
	}
	pub, err := d.store.Generate(ctx)
	if err != nil {
		if errors.Is(err, keystore.ErrKeyGeneration) {
			return "", fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return "", err
	}
	return pub, nil
}

func (d *Device) Sign(ctx context.Context, message string) (string, error) {
	sig, err := d.store.Sign(ctx, message)
	if errors.Is(err, keystore.ErrNoBoundDevice) {
		return "", ErrNoBoundDevice
	}
	return sig, err
}

// SignIntent builds today's message for intent and signs it.
func (d *Device) SignIntent(ctx context.Context, actorID string, intent Intent) (SignedIntent, error) {
	msg := BuildMessage(actorID, d.zone.Now(), intent, d.zone)
	sig, err := d.Sign(ctx, msg)
	if err != nil {
		return SignedIntent{}, err
	}
	return SignedIntent{ActorID: actorID, Intent: intent, Message: msg, Signature: sig}, nil
}

func (d *Device) IsBound(ctx context.Context) (bool, error) {
	return d.store.Exists(ctx)
}
