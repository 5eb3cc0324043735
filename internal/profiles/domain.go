package profiles

import "time"

// Profile is the per-principal record backing role resolution. One profile
// exists per principal, created implicitly at signup and never deleted.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roles a profile may hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether the value is an assignable role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
