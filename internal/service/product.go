package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/vending-machine/internal/domain/models"
	"github.com/linemk/vending-machine/internal/storage"
)

// ProductService определяет операции над товарами.
// Создавать товары может только продавец, менять и удалять — только владелец.
type ProductService interface {
	Create(ctx context.Context, current models.User, in CreateProductInput) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, current models.User, id int64, in UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, current models.User, id int64) error
}

type CreateProductInput struct {
	Name            string
	Cost            int
	AmountAvailable int
}

// UpdateProductInput — частичное обновление: nil-поля не трогаются.
type UpdateProductInput struct {
	Name            *string
	Cost            *int
	AmountAvailable *int
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{
		log:         log,
		productRepo: productRepo,
	}
}

func (s *productService) Create(ctx context.Context, current models.User, in CreateProductInput) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("sellerID", current.ID), slog.String("name", in.Name))

	if current.Role != models.RoleSeller {
		return nil, fmt.Errorf("%s: %w", op, ErrSellerOnly)
	}
	if err := validateProductFields(in.Name, in.Cost, in.AmountAvailable); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product := &models.Product{
		Name:            in.Name,
		Cost:            in.Cost,
		AmountAvailable: in.AmountAvailable,
		SellerID:        current.ID,
	}
	product, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, storage.ErrProductNameTaken) {
			return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Name has already been taken"))
		}
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", product.ID))
	return product, nil
}

func (s *productService) List(ctx context.Context) ([]*models.Product, error) {
	const op = "service.ProductService.List"

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.Get"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, wrapProductNotFound(err, id))
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, current models.User, id int64, in UpdateProductInput) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, wrapProductNotFound(err, id))
	}
	if err := requireOwner(current, product); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Cost != nil {
		product.Cost = *in.Cost
	}
	if in.AmountAvailable != nil {
		product.AmountAvailable = *in.AmountAvailable
	}
	if err := validateProductFields(product.Name, product.Cost, product.AmountAvailable); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductNameTaken) {
			return nil, fmt.Errorf("%s: %w", op, newValidationError("Validation failed: Name has already been taken"))
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update product: %w", op, err)
	}

	logger.Info("product updated")
	return product, nil
}

func (s *productService) Delete(ctx context.Context, current models.User, id int64) error {
	const op = "service.ProductService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, wrapProductNotFound(err, id))
	}
	if err := requireOwner(current, product); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product deleted")
	return nil
}

func validateProductFields(name string, cost, amountAvailable int) error {
	if name == "" {
		return newValidationError("Validation failed: Name can't be blank")
	}
	if cost <= 0 || cost%5 != 0 {
		return newValidationError("Validation failed: Cost must be a multiple of 5!")
	}
	if amountAvailable < 0 {
		return newValidationError("Validation failed: Amount available must be greater than or equal to 0")
	}
	return nil
}

// requireOwner — изменять товар может только его продавец
func requireOwner(current models.User, product *models.Product) error {
	if current.ID != product.SellerID {
		return ErrNotOwner
	}
	return nil
}

func wrapProductNotFound(err error, id int64) error {
	if errors.Is(err, storage.ErrProductNotFound) {
		return &NotFoundError{
			Message: fmt.Sprintf("There is no product with id %d", id),
			cause:   err,
		}
	}
	return err
}
