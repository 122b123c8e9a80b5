package httpapi

import (
	"context"
	"net/http"
	"strings"

	authdomain "github.com/Tokarsky98/GroceryMartAI/internal/auth/domain"
	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	"github.com/google/uuid"
)

const guestCookieName = "guest_session"

// Identity is the caller as the handlers see them: either an
// authenticated account or an anonymous guest session. CartKey is the
// key every cart and checkout operation is scoped by.
type Identity struct {
	CartKey       string
	UserID        int64
	Role          authdomain.Role
	Authenticated bool
}

type identityCtxKey struct{}

func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityCtxKey{}).(Identity)
	return id
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityMiddleware resolves every request to an identity. A valid
// bearer token wins; otherwise the guest session cookie is used,
// minting one on first contact.
func IdentityMiddleware(auth *authservice.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				claims, err := auth.ParseToken(token)
				if err != nil {
					respondError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
					return
				}
				id := Identity{
					CartKey:       cartdomain.UserKey(claims.UserID),
					UserID:        claims.UserID,
					Role:          claims.Role,
					Authenticated: true,
				}
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
				return
			}

			session := guestSession(r)
			if session == "" {
				session = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     guestCookieName,
					Value:    session,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			id := Identity{CartKey: cartdomain.SessionKey(session)}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth rejects guests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r.Context()).Authenticated {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r.Context())
		if !id.Authenticated {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
			return
		}
		if id.Role != authdomain.RoleAdmin {
			respondError(w, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func guestSession(r *http.Request) string {
	if c, err := r.Cookie(guestCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("X-Guest-Session")
}
