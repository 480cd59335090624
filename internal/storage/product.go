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
	ErrProductNotFound  = errors.New("product not found")
	ErrProductNameTaken = errors.New("product name already taken")
)

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	// LockProductByIDTx читает товар в транзакции с блокировкой строки,
	// чтобы покупка атомарно проверяла и уменьшала остаток.
	LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	UpdateStockTx(ctx context.Context, tx *sql.Tx, id int64, amountAvailable int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, cost, amount_available, seller_id, created_at, updated_at"

func scanProduct(row *sql.Row) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Cost, &p.AmountAvailable, &p.SellerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO products (name, cost, amount_available, seller_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		product.Name, product.Cost, product.AmountAvailable, product.SellerID,
	)
	if err := row.Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProductNameTaken
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.AmountAvailable, &p.SellerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = $1, cost = $2, amount_available = $3, updated_at = NOW() WHERE id = $4",
		product.Name, product.Cost, product.AmountAvailable, product.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductNameTaken
		}
		return err
	}
	return checkAffected(res, ErrProductNotFound)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrProductNotFound)
}

func (r *productRepository) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	p := &models.Product{}
	row := tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&p.ID, &p.Name, &p.Cost, &p.AmountAvailable, &p.SellerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock_not_available
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) UpdateStockTx(ctx context.Context, tx *sql.Tx, id int64, amountAvailable int) error {
	res, err := tx.ExecContext(ctx, "UPDATE products SET amount_available = $1, updated_at = NOW() WHERE id = $2", amountAvailable, id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrProductNotFound)
}
