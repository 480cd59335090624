package service

import "errors"

// Ошибки уровня бизнес-логики; транспортный слой сопоставляет их
// с HTTP-статусами через errors.Is/errors.As.
var (
	// аутентификация
	ErrInvalidCredentials = errors.New("unauthorized")
	ErrUnknownUsername    = errors.New("There is no user with the given username")

	// ролевые проверки
	ErrBuyerOnly  = errors.New("Only users with buyer role can make purchases")
	ErrSellerOnly = errors.New("Only a seller user can add products")
	ErrNotOwner   = errors.New("Only the seller of this product can modify it")
	ErrNotSelf    = errors.New("You are allowed to see/edit/delete only your user")

	// транзакционный движок
	ErrNotEnoughStock = errors.New("There is not enough stock to purchase for the given amount")
	ErrNotEnoughMoney = errors.New("There is not enough money deposited to make the purchase")
)

// ValidationError — нарушение доменного инварианта или формата поля,
// с готовым для клиента сообщением.
type ValidationError struct {
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// wrapValidationError сохраняет исходную ошибку в цепочке,
// а её текст делает сообщением для клиента
func wrapValidationError(err error) error {
	return &ValidationError{Message: err.Error(), cause: err}
}

// NotFoundError — запрошенная сущность не существует;
// сообщение содержит сущность и идентификатор.
type NotFoundError struct {
	Message string
	cause   error
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return e.cause
}
