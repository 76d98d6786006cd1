// Package otp issues and verifies six-digit one-time passcodes bound to an
// email address.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

const (
	// Length is the number of digits in a code.
	Length = 6
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 300 * time.Second

	keyPrefix = "otp:"
)

// Reason explains a failed verification. It is for logs and audit only and
// must not reach the caller.
type Reason string

const (
	ReasonExpiredOrMissing Reason = "expired_or_missing"
	ReasonMismatch         Reason = "mismatch"
)

// Result is the outcome of Verify.
type Result struct {
	Valid  bool
	Reason Reason
}

// Store is the TTL key/value store holding pending codes.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	CompareAndDelete(ctx context.Context, key, value string) (present, matched bool, err error)
}

// Engine generates codes and binds them to an email with a fixed TTL. Only a
// keyed digest of each code is stored.
type Engine struct {
	store  Store
	ttl    time.Duration
	macKey [32]byte
	random io.Reader
}

// NewEngine returns an engine storing codes in store for ttl. pepper keys the
// digest; an empty pepper still yields a valid (unkeyed-equivalent) digest.
func NewEngine(store Store, ttl time.Duration, pepper string) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Engine{
		store:  store,
		ttl:    ttl,
		macKey: blake2b.Sum256([]byte(pepper)),
		random: rand.Reader,
	}
}

// Key is the store key for email. Equal for any spelling that normalizes to
// the same address.
func Key(email string) string {
	return keyPrefix + domain.NormalizeEmail(email)
}

// Generate draws Length digits, each independently uniform over 0-9.
func (e *Engine) Generate() (string, error) {
	buf := make([]byte, Length)
	ten := big.NewInt(10)
	for i := range buf {
		n, err := rand.Int(e.random, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// Issue generates a code for email and stores it, replacing any pending code.
// The plaintext code is returned for delivery.
func (e *Engine) Issue(ctx context.Context, email string) (string, error) {
	code, err := e.Generate()
	if err != nil {
		return "", err
	}
	if err := e.store.Set(ctx, Key(email), e.digest(code), e.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the pending code for email. A match consumes the
// code in the same atomic step, so two concurrent calls cannot both succeed.
func (e *Engine) Verify(ctx context.Context, email, code string) (Result, error) {
	present, matched, err := e.store.CompareAndDelete(ctx, Key(email), e.digest(code))
	if err != nil {
		return Result{}, fmt.Errorf("verify otp: %w", err)
	}
	switch {
	case !present:
		return Result{Reason: ReasonExpiredOrMissing}, nil
	case !matched:
		return Result{Reason: ReasonMismatch}, nil
	default:
		return Result{Valid: true}, nil
	}
}

func (e *Engine) TTL() time.Duration { return e.ttl }

func (e *Engine) digest(code string) string {
	h, err := blake2b.New256(e.macKey[:])
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic(err)
	}
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}
