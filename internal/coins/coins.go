// Package coins содержит чистую логику работы с монетами:
// проверку номиналов и жадный размен суммы на монеты.
// Жадный алгоритм минимален только для канонического набора номиналов;
// при замене набора потребуется динамическое программирование.
package coins

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Accepted — фиксированный набор принимаемых номиналов (по возрастанию)
var Accepted = []int{5, 10, 20, 50, 100}

var (
	// ErrNotInteger — значение поля не является целым числом
	ErrNotInteger = errors.New("must be an integer")
	// ErrCoinNotAccepted — монета не входит в набор принимаемых номиналов
	ErrCoinNotAccepted = fmt.Errorf("Coin not accepted, must be included in %v", Accepted)
	// ErrNotChangeable — сумму нельзя разменять принимаемыми монетами;
	// внутренняя ошибка, при соблюдении инварианта deposit % 5 == 0 не возникает
	ErrNotChangeable = errors.New("amount cannot be split into accepted coins")
)

var integerRe = regexp.MustCompile(`^[-+]?[0-9]+$`)

// ParseInteger проверяет, что raw — синтаксически корректное целое число,
// и возвращает его значение. Текст ошибки содержит имя поля с заглавной буквы,
// например "Coin must be an integer".
func ParseInteger(field, raw string) (int, error) {
	if !integerRe.MatchString(raw) {
		return 0, fmt.Errorf("%s %w", capitalize(field), ErrNotInteger)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %w", capitalize(field), ErrNotInteger)
	}
	return n, nil
}

// CheckAccepted проверяет, что монета входит в набор принимаемых номиналов
func CheckAccepted(coin int) error {
	for _, c := range Accepted {
		if coin == c {
			return nil
		}
	}
	return ErrCoinNotAccepted
}

// MakeChange разменивает сумму на минимальное число монет жадным спуском
// от старшего номинала к младшему. Результат отсортирован по возрастанию.
func MakeChange(amount int) ([]int, error) {
	if amount < 0 {
		return nil, fmt.Errorf("negative amount %d: %w", amount, ErrNotChangeable)
	}

	coins := []int{}
	for i := len(Accepted) - 1; i >= 0; i-- {
		denom := Accepted[i]
		for n := amount / denom; n > 0; n-- {
			coins = append(coins, denom)
		}
		amount %= denom
	}
	// остаток после младшего номинала означает нарушение инварианта кратности
	if amount != 0 {
		return nil, fmt.Errorf("remainder %d after split: %w", amount, ErrNotChangeable)
	}

	sort.Ints(coins)
	return coins, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
