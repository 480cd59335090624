package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/vending-machine/internal/domain/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type UserStorage interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error)
	UpdateDepositTx(ctx context.Context, tx *sql.Tx, id int64, deposit int) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = "id, username, pass_hash, role, deposit, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.PassHash, &user.Role, &user.Deposit, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return scanUser(row)
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, pass_hash, role, deposit) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		user.Username, user.PassHash, user.Role, user.Deposit,
	)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET pass_hash = $1, deposit = $2, updated_at = NOW() WHERE id = $3",
		user.PassHash, user.Deposit, user.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrUserNotFound)
}

// DeleteUser удаляет пользователя; его товары удаляются каскадно (FK ON DELETE CASCADE)
func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrUserNotFound)
}

// LockUserByIDTx читает пользователя в рамках транзакции с блокировкой строки,
// чтобы сериализовать конкурентные изменения депозита
func (r *userRepository) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	user := &models.User{}
	row := tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&user.ID, &user.Username, &user.PassHash, &user.Role, &user.Deposit, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock_not_available
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UpdateDepositTx(ctx context.Context, tx *sql.Tx, id int64, deposit int) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET deposit = $1, updated_at = NOW() WHERE id = $2", deposit, id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrUserNotFound)
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}

func checkAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
