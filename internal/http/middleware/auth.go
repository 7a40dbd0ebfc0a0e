package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/httputil"
)

type contextKey string

// IdentityKey is the context key for the authenticated identity.
const IdentityKey contextKey = "identity"

// Claims are the token claims issued by the external identity provider.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Investor bool   `json:"investor"`
	jwt.RegisteredClaims
}

// Auth creates middleware that validates bearer tokens from the identity
// provider and puts the caller's identity in the request context.
func Auth(secret []byte, issuer string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}
			if tokenString == "" {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims := &Claims{}
			_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			identity := domain.Identity{
				UserID:   userID,
				Email:    claims.Email,
				Name:     claims.Name,
				Investor: claims.Investor,
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}
