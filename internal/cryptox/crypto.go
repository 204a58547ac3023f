// Package cryptox hashes and verifies the shared passwords protecting
// plain-password realms.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	scheme     = "argon2id"
	saltSize   = 16
	keyLength  = 32
	timeCost   = 1
	memoryCost = 64 * 1024
	threads    = 4
)

// ErrMalformedHash is returned when a stored hash cannot be decoded.
var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey stretches password with argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, timeCost, memoryCost, threads, keyLength)
}

// HashPassword returns "argon2id$<salt hex>$<key hex>" for password using a
// fresh random salt.
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return fmt.Sprintf("%s$%s$%s", scheme, hex.EncodeToString(salt), hex.EncodeToString(key))
}

// VerifyPassword checks candidate against an encoded hash in constant time.
func VerifyPassword(encoded string, candidate []byte) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != scheme {
		return false, ErrMalformedHash
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	got := DeriveKey(candidate, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
