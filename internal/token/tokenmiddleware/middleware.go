package tokenmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/storage"
	"github.com/linemk/vending-machine/internal/token"
)

type contextKey string

const userKey contextKey = "authUser"

// New создаёт middleware аутентификации: проверяет Bearer-токен и повторно
// разрешает вшитый в него id в существующего пользователя. Удалённый
// пользователь с ещё живым токеном получает 401. Аутентифицированный
// пользователь кладётся в контекст по значению.
func New(log *slog.Logger, userRepo storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "tokenmiddleware.New"
			logger := log.With(slog.String("op", op))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing token")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid token format")
				return
			}

			claims, err := token.Verify(parts[1])
			if err != nil {
				logger.Warn("token rejected", slog.Any("error", err))
				if errors.Is(err, token.ErrExpired) {
					unauthorized(w, token.ErrExpired.Error())
				} else {
					unauthorized(w, token.ErrMalformed.Error())
				}
				return
			}

			user, err := userRepo.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				// токен формально валиден, но пользователь уже удалён
				logger.Warn("token subject not resolved", slog.Int64("userID", claims.UserID), slog.Any("error", err))
				unauthorized(w, "token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), *user)))
		})
	}
}

// NewContext возвращает контекст с аутентифицированным пользователем.
func NewContext(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// FromContext извлекает аутентифицированного пользователя из контекста.
func FromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
