package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/vending-machine/internal/service"
)

// CreateProductRequest — входной JSON для создания товара
type CreateProductRequest struct {
	Name            string `json:"name" validate:"required"`
	Cost            int    `json:"cost" validate:"required"`
	AmountAvailable int    `json:"amount_available" validate:"gte=0"`
}

// UpdateProductRequest — частичное обновление товара
type UpdateProductRequest struct {
	Name            *string `json:"name,omitempty"`
	Cost            *int    `json:"cost,omitempty"`
	AmountAvailable *int    `json:"amount_available,omitempty"`
}

// ProductCreateHandler обрабатывает запрос POST /api/products (только продавец)
func ProductCreateHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductCreateHandler"
		logger := log.With(slog.String("op", op))

		current, ok := currentUser(logger, w, r)
		if !ok {
			return
		}

		var req CreateProductRequest
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

		product, err := productService.Create(r.Context(), current, service.CreateProductInput{
			Name:            req.Name,
			Cost:            req.Cost,
			AmountAvailable: req.AmountAvailable,
		})
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusCreated, product)
	}
}

// ProductListHandler обрабатывает запрос GET /api/products
func ProductListHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductListHandler"
		logger := log.With(slog.String("op", op))

		products, err := productService.List(r.Context())
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, products)
	}
}

// ProductShowHandler обрабатывает запрос GET /api/products/{id}
func ProductShowHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductShowHandler"
		logger := log.With(slog.String("op", op))

		_, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		product, err := productService.Get(r.Context(), id)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, product)
	}
}

// ProductUpdateHandler обрабатывает запрос PUT /api/products/{id} (только владелец)
func ProductUpdateHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductUpdateHandler"
		logger := log.With(slog.String("op", op))

		current, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		var req UpdateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		product, err := productService.Update(r.Context(), current, id, service.UpdateProductInput{
			Name:            req.Name,
			Cost:            req.Cost,
			AmountAvailable: req.AmountAvailable,
		})
		if err != nil {
			writeError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusAccepted, product)
	}
}

// ProductDeleteHandler обрабатывает запрос DELETE /api/products/{id} (только владелец)
func ProductDeleteHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductDeleteHandler"
		logger := log.With(slog.String("op", op))

		current, id, ok := currentUserAndID(logger, w, r)
		if !ok {
			return
		}

		if err := productService.Delete(r.Context(), current, id); err != nil {
			writeError(logger, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
