package record

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// KeyLength is the length of keys produced by DefaultKeyGenerator.
const KeyLength = 40

// KeyGenerator produces surrogate primary keys for inserted rows.
type KeyGenerator func() (string, error)

// DefaultKeyGenerator returns a time-ordered key of KeyLength lowercase hex
// characters: a UUIDv7 followed by four random bytes.
func DefaultKeyGenerator() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(id[:]) + hex.EncodeToString(suffix[:]), nil
}
