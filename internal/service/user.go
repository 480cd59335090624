package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserService определяет операции над учётной записью пользователя.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Get(ctx context.Context, current models.User, id int64) (*models.User, error)
	Update(ctx context.Context, current models.User, id int64, in UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, current models.User, id int64) error
}

type RegisterInput struct {
	Username string
	Password string
	Role     string
	Deposit  int
}

// UpdateUserInput — частичное обновление: nil-поля не трогаются.
type UpdateUserInput struct {
	Password *string
	Deposit  *int
}

type userService struct {
	log        *slog.Logger
	userRepo   storage.UserStorage
	bcryptCost int
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		log:        log,
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// Register создаёт пользователя после проверки доменных инвариантов:
// роль из списка, пароль не короче 6 символов, депозит неотрицателен и кратен 5.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.UserService.Register"
	logger := s.log.With(slog.String("op", op), slog.String("username", in.Username))

	if !models.Role(in.Role).Valid() {
		return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Role is not included in the list"))
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Password is too short (minimum is 6 characters)"))
	}
	if in.Deposit < 0 || in.Deposit%5 != 0 {
		return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Deposit must be a multiple of 5!"))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user := &models.User{
		Username: in.Username,
		PassHash: passHash,
		Role:     models.Role(in.Role),
		Deposit:  in.Deposit,
	}
	user, err = s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Username has already been taken"))
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

func (s *userService) Get(ctx context.Context, current models.User, id int64) (*models.User, error) {
	const op = "service.UserService.Get"

	if err := requireSelf(current, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, current models.User, id int64, in UpdateUserInput) (*models.User, error) {
	const op = "service.UserService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	if err := requireSelf(current, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Password is too short (minimum is 6 characters)"))
		}
		passHash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}
		user.PassHash = passHash
	}
	if in.Deposit != nil {
		if *in.Deposit < 0 || *in.Deposit%5 != 0 {
			return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Deposit must be a multiple of 5!"))
		}
		user.Deposit = *in.Deposit
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		logger.Error("failed to update user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	logger.Info("user updated")
	return user, nil
}

func (s *userService) Delete(ctx context.Context, current models.User, id int64) error {
	const op = "service.UserService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	if err := requireSelf(current, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		logger.Error("failed to delete user", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user deleted")
	return nil
}

// requireSelf — пользователь может смотреть и менять только свою учётную запись
func requireSelf(current models.User, targetID int64) error {
	if current.ID != targetID {
		return ErrNotSelf
	}
	return nil
}
