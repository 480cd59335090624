package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/storage"
)

// fakeUserRepo — фиктивная реализация UserStorage, ключ — id
type fakeUserRepo struct {
	users map[int64]*models.User
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, storage.ErrUsernameTaken
		}
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	return f.GetUserByID(ctx, id)
}

func (f *fakeUserRepo) UpdateDepositTx(ctx context.Context, tx *sql.Tx, id int64, deposit int) error {
	u, ok := f.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Deposit = deposit
	return nil
}

// fakeProductRepo — фиктивная реализация ProductStorage, ключ — id
type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	for _, p := range f.products {
		if p.Name == product.Name {
			return nil, storage.ErrProductNameTaken
		}
	}
	product.ID = int64(len(f.products) + 1)
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, storage.ErrProductNotFound
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return storage.ErrProductNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	return f.GetProductByID(ctx, id)
}

func (f *fakeProductRepo) UpdateStockTx(ctx context.Context, tx *sql.Tx, id int64, amountAvailable int) error {
	p, ok := f.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.AmountAvailable = amountAvailable
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
