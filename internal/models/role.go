package models

// Role is the fixed authorization role carried by a user and its session claims.
type Role string

const (
	// RoleAny is used by routes that only need an authenticated identity.
	RoleAny         Role = ""
	RoleRecommender Role = "BookRecommender"
	RoleReader      Role = "BookReader"
)

// Valid reports whether r is one of the two assignable roles.
func (r Role) Valid() bool {
	return r == RoleRecommender || r == RoleReader
}

func (r Role) String() string {
	if r == RoleAny {
		return "any"
	}
	return string(r)
}
