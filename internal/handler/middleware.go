package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vasiliy-maslov/storefront/internal/identity"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware достаёт пользователя сессии из Bearer-токена. Отсутствие
// токена — это гость, а не ошибка; неизвестный токен сбрасывает сессию.
func AuthMiddleware(sessions identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.UserByToken(token)
			if err != nil {
				// Просроченный или чужой токен: чистим сессию и отвечаем 401.
				sessions.Logout(token)
				respondWithError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFrom возвращает пользователя запроса, nil для гостя.
func userFrom(r *http.Request) *identity.User {
	user, _ := r.Context().Value(userContextKey).(*identity.User)
	return user
}

// requireAdmin пропускает только администраторов.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, "admin privileges required")
			return
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}
