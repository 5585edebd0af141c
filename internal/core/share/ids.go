package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// SecretBytes is the amount of randomness in a generated secret.
const SecretBytes = 32

// IDGenerator produces share ids.
type IDGenerator interface {
	NewID() string
}

// SecretGenerator produces share secrets.
type SecretGenerator interface {
	NewSecret() (string, error)
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// SecretFunc adapts a function to SecretGenerator.
type SecretFunc func() (string, error)

func (f SecretFunc) NewSecret() (string, error) { return f() }

// UUIDs generates random UUIDv4 share ids.
type UUIDs struct{}

func (UUIDs) NewID() string {
	return uuid.NewString()
}

// RandomSecrets generates url-safe secrets from crypto/rand.
type RandomSecrets struct{}

func (RandomSecrets) NewSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
