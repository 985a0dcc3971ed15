package models

import (
	"fmt"
	"strings"
)

// FlexibleBool - гибкий boolean тип, поддерживающий строки и числа
type FlexibleBool bool

// UnmarshalJSON поддерживает парсинг boolean из строки, числа и boolean
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	return fb.parse(strings.Trim(string(data), `"`))
}

// ParseFlexibleBool разбирает значение query-параметра
func ParseFlexibleBool(s string) (FlexibleBool, error) {
	var fb FlexibleBool
	err := fb.parse(s)
	return fb, err
}

func (fb *FlexibleBool) parse(str string) error {
	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off", "":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool возвращает bool значение
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreateSessionRequest - модель для открытия сессии бронирования
type CreateSessionRequest struct {
	VoyageID string `json:"voyage_id" binding:"required"`
}

// SelectCabinRequest - выбор каюты на плане палубы
type SelectCabinRequest struct {
	CabinID string `json:"cabin_id" binding:"required"`
}

// GuestRequest - данные гостя; полнота проверяется при переходе к следующему шагу
type GuestRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// SelectPackageRequest - выбор пакета услуг
type SelectPackageRequest struct {
	Package PackageTier `json:"package" binding:"required"`
}

// FavoritesResponse - избранные круизы
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// DeckResponse - план палубы сессии
type DeckResponse struct {
	Cabins   []Cabin `json:"cabins"`
	Selected string  `json:"selected,omitempty"`
}

// LocationsResponse - регионы каталога
type LocationsResponse struct {
	Locations []string `json:"locations"`
}
