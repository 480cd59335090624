package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/vending-machine/internal/coins"
	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/storage"
)

// VendingService — транзакционный движок автомата: покупка, внесение монет
// и сброс депозита. Каждая операция выполняется в транзакции БД с блокировкой
// затрагиваемых строк: все проверки происходят до изменений, при любой ошибке
// состояние не меняется.
type VendingService interface {
	Buy(ctx context.Context, current models.User, productID int64, rawAmount string) (*BuyResult, error)
	Deposit(ctx context.Context, current models.User, rawCoin string) error
	Reset(ctx context.Context, current models.User) ([]int, error)
}

// BuyResult — результат успешной покупки.
// Сдача отсортирована по возрастанию номинала.
type BuyResult struct {
	Total   int             `json:"total"`
	Change  []int           `json:"change"`
	Product *models.Product `json:"product"`
	Amount  int             `json:"amount"`
}

type vendingService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
}

func NewVendingService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, productRepo storage.ProductStorage) VendingService {
	return &vendingService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

// Buy осуществляет покупку товара покупателем.
// Депозит покупателя при успешной покупке всегда обнуляется: остаток
// возвращается монетами, а не остаётся на балансе. Это намеренное поведение.
func (s *vendingService) Buy(ctx context.Context, current models.User, productID int64, rawAmount string) (*BuyResult, error) {
	const op = "service.VendingService.Buy"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", current.ID), slog.Int64("productID", productID))
	logger.Info("starting purchase transaction")

	if err := requireBuyer(current); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	product, err := s.productRepo.LockProductByIDTx(ctx, tx, productID)
	if err != nil {
		rollback(logger, tx)
		logger.Warn("failed to get product", slog.Any("error", err))
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, &NotFoundError{
				Message: fmt.Sprintf("There is no product with id %d", productID),
				cause:   err,
			})
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	amount, err := coins.ParseInteger("amount", rawAmount)
	if err != nil {
		rollback(logger, tx)
		return nil, fmt.Errorf("%s: %w", op, wrapValidationError(err))
	}

	buyer, err := s.userRepo.LockUserByIDTx(ctx, tx, current.ID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to get buyer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get buyer: %w", op, err)
	}

	total := amount * product.Cost

	if amount > product.AmountAvailable {
		rollback(logger, tx)
		logger.Warn("not enough stock", slog.Int("requested", amount), slog.Int("available", product.AmountAvailable))
		return nil, fmt.Errorf("%s: %w", op, ErrNotEnoughStock)
	}
	if total > buyer.Deposit {
		rollback(logger, tx)
		logger.Warn("not enough money", slog.Int("total", total), slog.Int("deposit", buyer.Deposit))
		return nil, fmt.Errorf("%s: %w", op, ErrNotEnoughMoney)
	}

	product.AmountAvailable -= amount
	if err := s.productRepo.UpdateStockTx(ctx, tx, product.ID, product.AmountAvailable); err != nil {
		rollback(logger, tx)
		logger.Error("failed to update stock", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update stock: %w", op, err)
	}

	remainder := buyer.Deposit - total
	if err := s.userRepo.UpdateDepositTx(ctx, tx, buyer.ID, 0); err != nil {
		rollback(logger, tx)
		logger.Error("failed to update deposit", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update deposit: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	change, err := coins.MakeChange(remainder)
	if err != nil {
		// инвариант кратности депозита и цен нарушен — внутренняя ошибка
		logger.Error("failed to make change", slog.Int("remainder", remainder), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("purchase completed successfully", slog.Int("total", total))
	return &BuyResult{
		Total:   total,
		Change:  change,
		Product: product,
		Amount:  amount,
	}, nil
}

// Deposit добавляет монету принимаемого номинала на депозит покупателя.
// Сначала проверяется формат числа, затем принадлежность набору номиналов.
func (s *vendingService) Deposit(ctx context.Context, current models.User, rawCoin string) error {
	const op = "service.VendingService.Deposit"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", current.ID))

	if err := requireBuyer(current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	coin, err := coins.ParseInteger("coin", rawCoin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, wrapValidationError(err))
	}
	if err := coins.CheckAccepted(coin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	buyer, err := s.userRepo.LockUserByIDTx(ctx, tx, current.ID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to get buyer", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get buyer: %w", op, err)
	}

	if err := s.userRepo.UpdateDepositTx(ctx, tx, buyer.ID, buyer.Deposit+coin); err != nil {
		rollback(logger, tx)
		logger.Error("failed to update deposit", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update deposit: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("coin deposited", slog.Int("coin", coin))
	return nil
}

// Reset обнуляет депозит покупателя и возвращает его монетами.
func (s *vendingService) Reset(ctx context.Context, current models.User) ([]int, error) {
	const op = "service.VendingService.Reset"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", current.ID))

	if err := requireBuyer(current); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	buyer, err := s.userRepo.LockUserByIDTx(ctx, tx, current.ID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to get buyer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get buyer: %w", op, err)
	}

	change, err := coins.MakeChange(buyer.Deposit)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to make change", slog.Int("deposit", buyer.Deposit), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.userRepo.UpdateDepositTx(ctx, tx, buyer.ID, 0); err != nil {
		rollback(logger, tx)
		logger.Error("failed to update deposit", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update deposit: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("deposit reset", slog.Int("returned", buyer.Deposit))
	return change, nil
}

// requireBuyer — покупать, вносить монеты и сбрасывать депозит может только покупатель
func requireBuyer(current models.User) error {
	if current.Role != models.RoleBuyer {
		return ErrBuyerOnly
	}
	return nil
}

func rollback(logger *slog.Logger, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logger.Error("transaction rollback failed", slog.Any("error", err))
	}
}
