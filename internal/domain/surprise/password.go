package surprise

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	hashScheme = "argon2id"

	// MaxConcurrentDerivations is how many default-cost derivations may run at once.
	MaxConcurrentDerivations = 4
	// maxArgonMemory is the total KiB all in-flight derivations may hold (256 MiB).
	// Stored digests asking for more than this never verify.
	maxArgonMemory = MaxConcurrentDerivations * argonMemory
)

var (
	// derivationBudget is weighted in KiB of argon2 memory.
	derivationBudget = semaphore.NewWeighted(int64(maxArgonMemory))
	argonIDKey       = argon2.IDKey
)

// deriveKey runs argon2id once enough of the memory budget is free.
func deriveKey(password, salt []byte, iterations, memory uint32, threads uint8, keyLen uint32) []byte {
	// Acquire cannot fail on a background context and memory never exceeds the budget.
	_ = derivationBudget.Acquire(context.Background(), int64(memory))
	defer derivationBudget.Release(int64(memory))
	return argonIDKey(password, salt, iterations, memory, threads, keyLen)
}

// HashPassword derives a salted argon2id digest for plaintext.
// The encoded form is argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := deriveKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		hashScheme,
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword compares plaintext against a stored digest in constant time.
// Unsalted sha256 hex digests are still accepted. Malformed digests never match.
func VerifyPassword(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	if isLegacyDigest(digest) {
		sum := sha256.Sum256([]byte(plaintext))
		expected := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(digest))) == 1
	}

	parts := strings.Split(digest, "$")
	if len(parts) != 5 || parts[0] != hashScheme {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > maxArgonMemory || iterations == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(key) == 0 {
		return false
	}

	candidate := deriveKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

func isLegacyDigest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
