package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/isdelr/bookfinder-be/internal/models"
)

type contextKey string

// UserClaimsKey is the context key for validated session claims.
const UserClaimsKey = contextKey("userClaims")

// ErrorResponder writes an authentication or authorization failure.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Guard runs the token validator and the role gate in front of handlers.
type Guard struct {
	tokens  *TokenManager
	now     func() time.Time
	respond ErrorResponder
}

// NewGuard creates a Guard. now supplies the validation time for every request.
func NewGuard(tokens *TokenManager, now func() time.Time, respond ErrorResponder) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{tokens: tokens, now: now, respond: respond}
}

// RequireRole rejects requests whose token does not decode or whose role does
// not satisfy required. It re-validates on every request and ignores any role
// the client claims outside the signed token.
func (g *Guard) RequireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				g.respond(w, r, ErrUnauthenticated)
				return
			}
			decoded, err := g.tokens.Decode(tokenStr, g.now())
			if err != nil {
				g.respond(w, r, err)
				return
			}
			claims := &decoded

			if err := Authorize(claims, required); err != nil {
				g.respond(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireRole.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

// TokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the token cookie. Websocket upgrades may also pass it as the
// access_token query parameter because browsers cannot set headers there.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
		return ""
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}
