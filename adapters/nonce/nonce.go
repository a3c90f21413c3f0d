// Package nonce issues short-lived action nonces as keyed BLAKE2b
// digests over the action and a coarse time tick.
package nonce

import (
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/arraypress/flyouts/ports"
)

// Lifetime is the validity window of one tick. A nonce stays valid for
// the current tick and the previous one, so effective validity is
// between one and two lifetimes.
const Lifetime = 12 * time.Hour

const digestLen = 10

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Issuer derives nonces from a process key.
type Issuer struct {
	key   []byte
	clock ports.Clock
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithKey sets a stable key so nonces survive restarts. The key may be
// any length accepted by BLAKE2b, up to 64 bytes.
func WithKey(key []byte) Option {
	return func(i *Issuer) { i.key = key }
}

// WithClock overrides the time source.
func WithClock(clock ports.Clock) Option {
	return func(i *Issuer) { i.clock = clock }
}

// New creates an issuer. Without WithKey the key is random per process,
// which invalidates outstanding nonces on restart.
func New(opts ...Option) *Issuer {
	i := &Issuer{
		key:   []byte(uuid.NewString()),
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a nonce bound to the action and the current tick.
func (i *Issuer) Issue(action string) string {
	return i.digest(action, i.tick(0))
}

// Verify accepts nonces from the current tick and the previous one.
func (i *Issuer) Verify(action, nonce string) bool {
	if nonce == "" {
		return false
	}
	for _, offset := range []int64{0, -1} {
		want := i.digest(action, i.tick(offset))
		if subtle.ConstantTimeCompare([]byte(want), []byte(nonce)) == 1 {
			return true
		}
	}
	return false
}

func (i *Issuer) tick(offset int64) int64 {
	return i.clock.Now().Unix()/int64(Lifetime.Seconds()) + offset
}

func (i *Issuer) digest(action string, tick int64) string {
	h, err := blake2b.New(digestLen, i.key)
	if err != nil {
		// Only reachable with a key over 64 bytes.
		panic(err)
	}
	h.Write([]byte(action))
	h.Write([]byte{0})
	var buf [8]byte
	for n := 0; n < 8; n++ {
		buf[n] = byte(tick >> (8 * n))
	}
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))
}
