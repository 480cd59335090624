package models

import "time"

// Product представляет товар, выставленный продавцом
type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"` // название товара (уникальное)
	Cost            int       `json:"cost"` // цена в монетах, кратна 5
	AmountAvailable int       `json:"amount_available"`
	SellerID        int64     `json:"seller_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
