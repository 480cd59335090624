package service_test

import (
	"context"
	"testing"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/service"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "seller_user",
		Password: "test_password",
		Role:     "seller",
		Deposit:  50,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleSeller, user.Role)
	assert.Equal(t, 50, user.Deposit)
	// пароль должен храниться только в виде хэша
	assert.NotEqual(t, "test_password", string(user.PassHash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PassHash, []byte("test_password")))
}

func TestUserService_Register_DepositNotMultipleOfFive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "seller_user",
		Password: "test_password",
		Role:     "seller",
		Deposit:  42,
	})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Deposit must be a multiple of 5!", validationErr.Message)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "seller_user",
		Password: "six",
		Role:     "seller",
		Deposit:  50,
	})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Password is too short (minimum is 6 characters)", validationErr.Message)
}

func TestUserService_Register_BadRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alien_user",
		Password: "test_password",
		Role:     "alien",
		Deposit:  50,
	})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Role is not included in the list", validationErr.Message)
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	in := service.RegisterInput{
		Username: "buyer_user",
		Password: "test_password",
		Role:     "buyer",
		Deposit:  0,
	}
	_, err := svc.Register(context.Background(), in)
	assert.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Username has already been taken", validationErr.Message)
}

func TestUserService_Get_SelfOnly(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	userA := addUser(t, repo, "user_a", "test_password", models.RoleBuyer, 100)
	userB := addUser(t, repo, "user_b", "test_password", models.RoleBuyer, 100)

	// свою учётную запись смотреть можно
	got, err := svc.Get(context.Background(), *userA, userA.ID)
	assert.NoError(t, err)
	assert.Equal(t, userA.ID, got.ID)

	// чужую — нельзя, независимо от валидности токена
	_, err = svc.Get(context.Background(), *userA, userB.ID)
	assert.ErrorIs(t, err, service.ErrNotSelf)
}

func TestUserService_Update_Deposit(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	user := addUser(t, repo, "buyer_user", "test_password", models.RoleBuyer, 100)

	newDeposit := 45
	updated, err := svc.Update(context.Background(), *user, user.ID, service.UpdateUserInput{Deposit: &newDeposit})
	assert.NoError(t, err)
	assert.Equal(t, 45, updated.Deposit)

	badDeposit := 42
	_, err = svc.Update(context.Background(), *user, user.ID, service.UpdateUserInput{Deposit: &badDeposit})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUserService_Delete_SelfOnly(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(testLogger(), repo, bcrypt.MinCost)

	userA := addUser(t, repo, "user_a", "test_password", models.RoleBuyer, 100)
	userB := addUser(t, repo, "user_b", "test_password", models.RoleBuyer, 100)

	err := svc.Delete(context.Background(), *userA, userB.ID)
	assert.ErrorIs(t, err, service.ErrNotSelf)

	err = svc.Delete(context.Background(), *userA, userA.ID)
	assert.NoError(t, err)

	_, err = repo.GetUserByID(context.Background(), userA.ID)
	assert.Error(t, err)
}
