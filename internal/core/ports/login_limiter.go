package ports

import "context"

// LoginLimiter tracks failed logins per username and locks accounts that
// exceed the configured number of attempts.
type LoginLimiter interface {
	IsLocked(ctx context.Context, username string) (bool, error)
	// RegisterFailure counts a failure and reports whether the account is
	// now locked.
	RegisterFailure(ctx context.Context, username string) (bool, error)
	Reset(ctx context.Context, username string) error
}
