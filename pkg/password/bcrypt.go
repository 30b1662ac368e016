// Package password implements the credential hasher on top of bcrypt.
//
// The cost is recorded inside every digest, so changing BCRYPT_COST only
// affects new digests; existing ones keep verifying with their own cost.
package password

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

var (
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong: bcrypt only reads the first 72 bytes.
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

// MaxPasswordBytes is the longest secret bcrypt accepts.
const MaxPasswordBytes = 72

type Config struct {
	Cost int
	// MaxConcurrent bounds how many digests are computed at once.
	MaxConcurrent int
}

// Bcrypt hashes on a bounded set of slots so a burst of logins cannot starve
// the rest of the server of CPU.
type Bcrypt struct {
	cost  int
	slots *semaphore.Weighted
	dummy []byte
}

func NewBcrypt(cfg Config) (*Bcrypt, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, bcrypt.InvalidCostError(cfg.Cost)
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), cfg.Cost)
	if err != nil {
		return nil, err
	}
	return &Bcrypt{
		cost:  cfg.Cost,
		slots: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		dummy: dummy,
	}, nil
}

func (b *Bcrypt) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer b.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer b.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil, nil
}

// Burn runs one comparison against a fixed digest. Callers use it on paths
// that would otherwise answer faster than a real verification.
func (b *Bcrypt) Burn(ctx context.Context, plaintext string) {
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return
	}
	defer b.slots.Release(1)

	_ = bcrypt.CompareHashAndPassword(b.dummy, []byte(plaintext))
}
