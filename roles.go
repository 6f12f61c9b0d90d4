package authgate

// Salon staff roles. Role names travel inside token claims and session
// records as plain strings; these constants are the only values the demo
// deployment issues, but RequireRole accepts any string set.
const (
	RoleAdmin      = "admin"
	RoleUser       = "user"
	RoleSuperAdmin = "super-admin"
)

func roleIn(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
