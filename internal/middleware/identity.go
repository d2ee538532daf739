package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/cookie"
	"github.com/manicvanity/storefront/internal/domain"
)

const CartSessionContextKey contextKey = "cart_session"

// Identity resolves whose cart the request operates on. A valid signed
// owner cookie identifies the shopper; otherwise a well-formed guest token,
// if any, is used. Bad cookies are ignored, never rejected.
func Identity(cookies *cookie.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session domain.CartSession

			if raw := cookie.Get(r, cookie.OwnerCookieName); raw != "" {
				if id, ok := cookies.VerifyOwner(raw); ok {
					session.OwnerID = &id
				}
			}
			if token := cookie.Get(r, cookie.GuestCookieName); cookie.ValidGuestToken(token) {
				session.GuestToken = token
			}

			next.ServeHTTP(w, r.WithContext(WithCartSession(r.Context(), session)))
		})
	}
}

// RequireOwner rejects requests without an identified shopper.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetCartSession(r.Context()).OwnerID == nil {
			respondUnauthorized(w, r, domain.ErrSignInRequired.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithCartSession(ctx context.Context, session domain.CartSession) context.Context {
	return context.WithValue(ctx, CartSessionContextKey, session)
}

// GetCartSession returns the request's session; the zero value when Identity
// did not run.
func GetCartSession(ctx context.Context) domain.CartSession {
	session, _ := ctx.Value(CartSessionContextKey).(domain.CartSession)
	return session
}

// GetOwnerID returns the identified shopper's id, or uuid.Nil.
func GetOwnerID(ctx context.Context) uuid.UUID {
	if id := GetCartSession(ctx).OwnerID; id != nil {
		return *id
	}
	return uuid.Nil
}
