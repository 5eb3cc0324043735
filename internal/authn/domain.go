package authn

import "time"

// Account is a profile row together with its credential hash. The hash never
// leaves this package.
type Account struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
