package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// SaltSize is the length of the per-record salt handed to a Hasher.
const SaltSize = 16

// Hasher turns a raw password and a per-record salt into a one-way digest.
type Hasher interface {
	Hash(raw, salt []byte) ([]byte, error)
	Verify(raw, salt, digest []byte) bool
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// NewHasher resolves a hasher by its configuration name.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", "argon2id":
		return Argon2Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// Argon2Hasher derives digests with argon2id using the RFC 9106 second
// recommended parameter set.
type Argon2Hasher struct{}

const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func (Argon2Hasher) Hash(raw, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("argon2id: empty salt")
	}
	return argon2.IDKey(raw, salt, argonTime, argonMemory, argonThreads, argonKeyLen), nil
}

func (h Argon2Hasher) Verify(raw, salt, digest []byte) bool {
	candidate, err := h.Hash(raw, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

// BcryptHasher feeds sha256(salt || raw) to bcrypt. bcrypt keeps its own
// internal salt; pre-hashing binds the record salt and sidesteps the 72 byte
// input limit.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(raw, salt []byte) ([]byte, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword(prehash(raw, salt), cost)
}

func (h BcryptHasher) Verify(raw, salt, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, prehash(raw, salt)) == nil
}

func prehash(raw, salt []byte) []byte {
	sum := sha256.New()
	sum.Write(salt)
	sum.Write(raw)
	return sum.Sum(nil)
}
