package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/vending-machine/internal/service"
)

// LoginRequest представляет структуру запроса для аутентификации с тегами валидации
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse представляет структуру ответа с JWT-токеном
type LoginResponse struct {
	Token string `json:"token"`
}

var validate = validator.New()

// LoginHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "validation error"})
			return
		}

		token, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, LoginResponse{Token: token})
	}
}
