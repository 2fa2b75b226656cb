package surprise

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// SlugLength is the length of generated slugs (12 chars of a 64 symbol alphabet, 72 bits).
	SlugLength = 12

	// SlugAlphabet is the URL-safe nanoid alphabet.
	SlugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

	// MaxSlugRetries caps slug regeneration on collision.
	MaxSlugRetries = 5

	maxSlugLength = 64
)

// SlugGenerator generates random slugs that are not yet taken.
type SlugGenerator struct {
	repo Repository
}

// NewSlugGenerator creates a new slug generator.
func NewSlugGenerator(repo Repository) *SlugGenerator {
	return &SlugGenerator{repo: repo}
}

// GenerateUniqueSlug generates a slug and retries up to MaxSlugRetries times
// while the repository reports it as taken.
func (g *SlugGenerator) GenerateUniqueSlug(ctx context.Context) (string, error) {
	for i := 0; i < MaxSlugRetries; i++ {
		slug, err := GenerateSlug()
		if err != nil {
			return "", fmt.Errorf("failed to generate slug: %w", err)
		}

		exists, err := g.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug existence: %w", err)
		}
		if !exists {
			return slug, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique slug after %d attempts", MaxSlugRetries)
}

// GenerateSlug returns a cryptographically random SlugLength slug.
func GenerateSlug() (string, error) {
	alphabetLen := big.NewInt(int64(len(SlugAlphabet)))
	result := make([]byte, SlugLength)

	for i := 0; i < SlugLength; i++ {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = SlugAlphabet[idx.Int64()]
	}

	return string(result), nil
}

// ValidateSlug checks that slug only uses the slug alphabet. Older records may
// carry slugs of a different length, so only an upper bound is enforced.
func ValidateSlug(slug string) bool {
	if slug == "" || len(slug) > maxSlugLength {
		return false
	}
	for _, c := range slug {
		if !isSlugChar(c) {
			return false
		}
	}
	return true
}

func isSlugChar(c rune) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		c == '_' || c == '-'
}
