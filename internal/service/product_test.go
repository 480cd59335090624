package service_test

import (
	"context"
	"testing"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/service"
	"github.com/stretchr/testify/assert"
)

func seller(id int64) models.User {
	return models.User{ID: id, Username: "seller_user", Role: models.RoleSeller}
}

func buyer(id int64) models.User {
	return models.User{ID: id, Username: "buyer_user", Role: models.RoleBuyer, Deposit: 100}
}

func TestProductService_Create_Success(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	product, err := svc.Create(context.Background(), seller(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            20,
		AmountAvailable: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), product.SellerID)
	assert.Equal(t, "soda", product.Name)
}

func TestProductService_Create_SellerOnly(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	_, err := svc.Create(context.Background(), buyer(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            20,
		AmountAvailable: 10,
	})
	assert.ErrorIs(t, err, service.ErrSellerOnly)
}

func TestProductService_Create_CostNotMultipleOfFive(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	_, err := svc.Create(context.Background(), seller(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            22,
		AmountAvailable: 10,
	})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Cost must be a multiple of 5!", validationErr.Message)
}

func TestProductService_Create_DuplicateName(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	in := service.CreateProductInput{Name: "soda", Cost: 20, AmountAvailable: 10}
	_, err := svc.Create(context.Background(), seller(1), in)
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), seller(1), in)
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Validation failed: Name has already been taken", validationErr.Message)
}

func TestProductService_Get_NotFound(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	_, err := svc.Get(context.Background(), 5)
	var notFoundErr *service.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "There is no product with id 5", notFoundErr.Message)
}

func TestProductService_Update_OwnerOnly(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	product, err := svc.Create(context.Background(), seller(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            20,
		AmountAvailable: 10,
	})
	assert.NoError(t, err)

	// другой продавец не владеет этим товаром
	other := models.User{ID: 2, Username: "other_seller", Role: models.RoleSeller}
	newCost := 25
	_, err = svc.Update(context.Background(), other, product.ID, service.UpdateProductInput{Cost: &newCost})
	assert.ErrorIs(t, err, service.ErrNotOwner)

	updated, err := svc.Update(context.Background(), seller(1), product.ID, service.UpdateProductInput{Cost: &newCost})
	assert.NoError(t, err)
	assert.Equal(t, 25, updated.Cost)
}

func TestProductService_Update_InvalidCost(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	product, err := svc.Create(context.Background(), seller(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            20,
		AmountAvailable: 10,
	})
	assert.NoError(t, err)

	badCost := 7
	_, err = svc.Update(context.Background(), seller(1), product.ID, service.UpdateProductInput{Cost: &badCost})
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestProductService_Delete_OwnerOnly(t *testing.T) {
	repo := newFakeProductRepo()
	svc := service.NewProductService(testLogger(), repo)

	product, err := svc.Create(context.Background(), seller(1), service.CreateProductInput{
		Name:            "soda",
		Cost:            20,
		AmountAvailable: 10,
	})
	assert.NoError(t, err)

	other := models.User{ID: 2, Username: "other_seller", Role: models.RoleSeller}
	err = svc.Delete(context.Background(), other, product.ID)
	assert.ErrorIs(t, err, service.ErrNotOwner)

	err = svc.Delete(context.Background(), seller(1), product.ID)
	assert.NoError(t, err)

	_, err = repo.GetProductByID(context.Background(), product.ID)
	assert.Error(t, err)
}
