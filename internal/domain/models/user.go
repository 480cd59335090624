package models

import "time"

// Role определяет роль пользователя в системе
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid проверяет, что роль входит в список допустимых
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	}
	return false
}

// User представляет пользователя автомата (покупателя или продавца)
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	PassHash  []byte    `json:"-"`
	Role      Role      `json:"role"`
	Deposit   int       `json:"deposit"` // всегда неотрицательное число, кратное 5
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
