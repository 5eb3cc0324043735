package access

// Role is the coarse authorization level attached to a principal.
type Role string

// Known roles. RoleNone means no authenticated session.
const (
	RoleNone  Role = "none"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Category classifies a request path for the route gate.
type Category int

// Route categories.
const (
	CategoryPublic Category = iota
	CategoryAuthOnly
	CategoryUserArea
	CategoryAdminArea
)

// String names the category for logs and metrics labels.
func (c Category) String() string {
	switch c {
	case CategoryAuthOnly:
		return "auth_only"
	case CategoryUserArea:
		return "user_area"
	case CategoryAdminArea:
		return "admin_area"
	}
	return "public"
}

// Redirect targets used by the gate. LogoutPath is the one auth route an
// authenticated principal must still reach; the gate exempts it from the
// landing redirect.
const (
	LoginPath       = "/auth/login"
	LogoutPath      = "/auth/logout"
	UserLandingPath = "/tasks"
)
