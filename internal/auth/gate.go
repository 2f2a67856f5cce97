package auth

import "github.com/isdelr/bookfinder-be/internal/models"

// Authorize decides whether claims satisfy required. A nil claims value means
// the caller never decoded a token or decoding failed. It is the only
// authoritative role check and depends on nothing but its arguments.
func Authorize(claims *Claims, required models.Role) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if required == models.RoleAny || required == claims.Role {
		return nil
	}
	return ErrForbiddenRole
}
