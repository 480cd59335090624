// Package token реализует выпуск и проверку JWT-токенов сессии.
// Токен самодостаточен и не хранится на сервере: личность пользователя
// подтверждается подписью и повторным поиском id в базе при каждом запросе.
package token

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/linemk/vending-machine/internal/domain/models"
)

var (
	// ErrExpired — срок действия токена истёк
	ErrExpired = errors.New("token expired, issue another")
	// ErrMalformed — токен повреждён, не подписан нашим секретом или не разбирается
	ErrMalformed = errors.New("token is not valid")
)

// Claims — результат успешной проверки токена
type Claims struct {
	UserID int64
	Role   models.Role
}

// New генерирует JWT-токен для указанного пользователя с заданным временем жизни.
// Секрет для подписи берётся из переменной окружения JWT_SECRET.
func New(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	return t.SignedString([]byte(secret))
}

// Verify проверяет подпись и срок действия токена и возвращает вшитые в него
// идентификатор и роль пользователя. Истёкший и повреждённый токены различаются.
func Verify(tokenStr string) (*Claims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !t.Valid {
		return nil, ErrMalformed
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrMalformed
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrMalformed
	}
	role, _ := mapClaims["role"].(string)

	return &Claims{UserID: userID, Role: models.Role(role)}, nil
}
