package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/service"
	"github.com/linemk/vending-machine/internal/token/tokenmiddleware"
)

// RegisterRequest — входной JSON для регистрации пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Deposit  int    `json:"deposit" validate:"gte=0"`
}

// UpdateUserRequest — частичное обновление учётной записи
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty"`
	Deposit  *int    `json:"deposit,omitempty"`
}

// RegisterHandler обрабатывает запрос POST /api/users (без аутентификации)
func RegisterHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation error: " + err.Error()})
			return
		}

		user, err := userService.Register(r.Context(), service.RegisterInput{
			Username: req.Username,
			Password: req.Password,
			Role:     req.Role,
			Deposit:  req.Deposit,
		})
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusCreated, user)
	}
}

// UserShowHandler обрабатывает запрос GET /api/users/{id} (только своя учётная запись)
func UserShowHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UserShowHandler"
		logger := log.With(slog.String("op", op))

		current, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		user, err := userService.Get(r.Context(), current, id)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, user)
	}
}

// UserUpdateHandler обрабатывает запрос PUT /api/users/{id}
func UserUpdateHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UserUpdateHandler"
		logger := log.With(slog.String("op", op))

		current, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		user, err := userService.Update(r.Context(), current, id, service.UpdateUserInput{
			Password: req.Password,
			Deposit:  req.Deposit,
		})
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusAccepted, user)
	}
}

// UserDeleteHandler обрабатывает запрос DELETE /api/users/{id}
func UserDeleteHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UserDeleteHandler"
		logger := log.With(slog.String("op", op))

		current, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		if err := userService.Delete(r.Context(), current, id); err != nil {
			writeError(logger, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// currentUser достаёт аутентифицированного пользователя из контекста;
// при ошибке сам пишет ответ
func currentUser(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	current, ok := tokenmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("user not found in context")
		writeJSON(logger, w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return models.User{}, false
	}
	return current, true
}

// currentUserAndID достаёт аутентифицированного пользователя из контекста
// и идентификатор цели из URL; при ошибке сам пишет ответ
func currentUserAndID(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (models.User, int64, bool) {
	current, ok := tokenmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("user not found in context")
		writeJSON(logger, w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return models.User{}, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		logger.Error("invalid id parameter", slog.Any("error", err))
		writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return models.User{}, 0, false
	}
	return current, id, true
}
