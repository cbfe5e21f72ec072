package ports

import "context"

// CredentialHasher performs one-way password hashing and verification.
type CredentialHasher interface {
	// Hash derives an opaque salted hash from plaintext.
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches the stored hash. A malformed
	// stored hash is a verification failure, not an error; the error return
	// is reserved for context cancellation.
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}
