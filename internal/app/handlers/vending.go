package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/vending-machine/internal/service"
)

// BuyRequest — входной JSON для покупки. Поле amount принимается
// как строка или число и проверяется на целочисленность бизнес-логикой.
type BuyRequest struct {
	ProductID int64           `json:"product_id"`
	Amount    json.RawMessage `json:"amount"`
}

// DepositRequest — входной JSON для внесения монеты
type DepositRequest struct {
	Coin json.RawMessage `json:"coin"`
}

// ResetResponse — ответ на сброс депозита
type ResetResponse struct {
	Change []int `json:"change"`
}

// BuyHandler обрабатывает запрос POST /api/buy (только покупатель)
func BuyHandler(log *slog.Logger, vendingService service.VendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BuyHandler"
		logger := log.With(slog.String("op", op))

		current, ok := currentUser(logger, w, r)
		if !ok {
			return
		}

		var req BuyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		result, err := vendingService.Buy(r.Context(), current, req.ProductID, rawString(req.Amount))
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, result)
	}
}

// DepositHandler обрабатывает запрос POST /api/deposit (только покупатель)
func DepositHandler(log *slog.Logger, vendingService service.VendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DepositHandler"
		logger := log.With(slog.String("op", op))

		current, ok := currentUser(logger, w, r)
		if !ok {
			return
		}

		var req DepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		if err := vendingService.Deposit(r.Context(), current, rawString(req.Coin)); err != nil {
			writeError(logger, w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// ResetHandler обрабатывает запрос POST /api/reset (только покупатель)
func ResetHandler(log *slog.Logger, vendingService service.VendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ResetHandler"
		logger := log.With(slog.String("op", op))

		current, ok := currentUser(logger, w, r)
		if !ok {
			return
		}

		change, err := vendingService.Reset(r.Context(), current)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, ResetResponse{Change: change})
	}
}
