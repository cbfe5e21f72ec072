package ports

import "context"

// LoginLimiter throttles repeated login attempts per username.
type LoginLimiter interface {
	// Allow records an attempt and reports whether it is within the window.
	Allow(ctx context.Context, username string) (bool, error)
	// Reset clears the attempt counter after a successful login.
	Reset(ctx context.Context, username string) error
}
