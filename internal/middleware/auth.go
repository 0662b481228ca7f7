package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

type ctxKey int

const identityKey ctxKey = iota

const bearerPrefix = "Bearer "

// Authenticator проверяет Bearer-токен (подпись, срок, черный список)
// и кладет auth.Identity в контекст. Дальше бизнес-логики без
// валидного токена не пройти.
func Authenticator(tokens *auth.TokenManager, blacklist *auth.Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "unauthorized")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil || blacklist.Contains(token) {
				respond.Error(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "unauthorized")
				return
			}

			identity := auth.Identity{UserID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	return token, token != ""
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
