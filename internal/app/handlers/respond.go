package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/vending-machine/internal/coins"
	"github.com/linemk/vending-machine/internal/service"
	"github.com/linemk/vending-machine/internal/storage"
)

// ErrorResponse — единый формат тела ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError сопоставляет ошибку бизнес-логики с HTTP-статусом и отдаёт
// клиенту чистое сообщение, без служебных префиксов из цепочки оборачиваний
func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	status, msg := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Any("error", err))
	}
	writeJSON(log, w, status, ErrorResponse{Error: msg})
}

func statusFromError(err error) (int, string) {
	var validationErr *service.ValidationError
	var notFoundErr *service.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Message
	case errors.Is(err, service.ErrUnknownUsername):
		return http.StatusNotFound, service.ErrUnknownUsername.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrBuyerOnly):
		return http.StatusUnauthorized, service.ErrBuyerOnly.Error()
	case errors.Is(err, service.ErrNotSelf):
		return http.StatusUnauthorized, service.ErrNotSelf.Error()
	case errors.Is(err, service.ErrSellerOnly):
		return http.StatusMethodNotAllowed, service.ErrSellerOnly.Error()
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusMethodNotAllowed, service.ErrNotOwner.Error()
	case errors.Is(err, service.ErrNotEnoughStock):
		return http.StatusUnprocessableEntity, service.ErrNotEnoughStock.Error()
	case errors.Is(err, service.ErrNotEnoughMoney):
		return http.StatusUnprocessableEntity, service.ErrNotEnoughMoney.Error()
	case errors.Is(err, coins.ErrCoinNotAccepted):
		return http.StatusUnprocessableEntity, coins.ErrCoinNotAccepted.Error()
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, storage.ErrUserNotFound.Error()
	case errors.Is(err, storage.ErrProductNotFound):
		return http.StatusNotFound, storage.ErrProductNotFound.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// rawString возвращает текст JSON-значения: строка — без кавычек,
// число — как есть. Позволяет принимать и "5", и 5 в полях coin/amount.
func rawString(raw json.RawMessage) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return string(raw[1 : len(raw)-1])
	}
	return string(raw)
}
