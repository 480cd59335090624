package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/vending-machine/internal/app"
	"github.com/linemk/vending-machine/internal/app/handlers"
	"github.com/linemk/vending-machine/internal/config"
	"github.com/linemk/vending-machine/internal/lib/logger"
	"github.com/linemk/vending-machine/internal/lib/logger/handlers/urllog"
	"github.com/linemk/vending-machine/internal/service"
	"github.com/linemk/vending-machine/internal/storage"
	"github.com/linemk/vending-machine/internal/token/tokenmiddleware"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	userService := service.NewUserService(application.Logger, userRepo, application.Config.BCrypt.Cost)
	productService := service.NewProductService(application.Logger, productRepo)
	vendingService := service.NewVendingService(application.Logger, application.DB, userRepo, productRepo)

	// публичные эндпоинты: аутентификация и регистрация
	router.Post("/api/login", handlers.LoginHandler(application.Logger, authService))
	router.Post("/api/users", handlers.RegisterHandler(application.Logger, userService))

	router.Group(func(r chi.Router) {
		authMW := tokenmiddleware.New(application.Logger, userRepo)
		r.Use(authMW)
		// учётная запись (только своя)
		r.Get("/api/users/{id}", handlers.UserShowHandler(application.Logger, userService))
		r.Put("/api/users/{id}", handlers.UserUpdateHandler(application.Logger, userService))
		r.Delete("/api/users/{id}", handlers.UserDeleteHandler(application.Logger, userService))
		// товары
		r.Get("/api/products", handlers.ProductListHandler(application.Logger, productService))
		r.Post("/api/products", handlers.ProductCreateHandler(application.Logger, productService))
		r.Get("/api/products/{id}", handlers.ProductShowHandler(application.Logger, productService))
		r.Put("/api/products/{id}", handlers.ProductUpdateHandler(application.Logger, productService))
		r.Delete("/api/products/{id}", handlers.ProductDeleteHandler(application.Logger, productService))
		// транзакционный движок: покупка, внесение монет, сброс депозита
		r.Post("/api/buy", handlers.BuyHandler(application.Logger, vendingService))
		r.Post("/api/deposit", handlers.DepositHandler(application.Logger, vendingService))
		r.Post("/api/reset", handlers.ResetHandler(application.Logger, vendingService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
