package feed

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"stocksync/internal/model"
)

const (
	tokenMoreThanTen    = ">10"
	tokenReservedSingle = "1"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

var errEmpty = errors.New("empty value")

// ParseQuantity reads the stock column. Anything that is not one of the
// supplier tokens or a non-negative integer is an error.
func ParseQuantity(s string) (model.Quantity, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return model.Quantity{}, errEmpty
	case tokenMoreThanTen:
		return model.MoreThanTen(), nil
	case tokenReservedSingle:
		return model.ReservedSingle(), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return model.Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	if n < 0 {
		return model.Quantity{}, fmt.Errorf("negative quantity %q", s)
	}
	return model.Exact(n), nil
}

// NormalizePrice drops the fractional part and every non-digit character:
// "5'990.00 руб." becomes "5990".
func NormalizePrice(s string) (string, error) {
	whole, _, _ := strings.Cut(s, ".")
	digits := nonDigits.ReplaceAllString(whole, "")
	if digits == "" {
		return "", fmt.Errorf("invalid price %q", s)
	}
	return digits, nil
}

// ParsePrice normalizes s and converts it to whole currency units.
func ParsePrice(s string) (int64, error) {
	digits, err := NormalizePrice(s)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return n, nil
}
