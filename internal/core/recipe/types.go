package recipe

import (
	"strconv"
	"strings"
)

// Recipe 食譜卡片資料，載入目錄後不可變更
type Recipe struct {
	ID          int          `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name" validate:"notblank"`
	Servings    int          `json:"servings,omitempty" yaml:"servings" validate:"gte=0"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients" validate:"required,min=1,dive"`
	Time        int          `json:"time" yaml:"time" validate:"gte=0"`
	Description string       `json:"description" yaml:"description" validate:"notblank"`
	Appliance   string       `json:"appliance" yaml:"appliance" validate:"notblank"`
	Ustensils   []string     `json:"ustensils" yaml:"ustensils" validate:"dive,notblank"`
	Image       string       `json:"image" yaml:"image" validate:"notblank"`
}

// Ingredient 食材行，數量與單位皆可省略
type Ingredient struct {
	Ingredient string   `json:"ingredient" yaml:"ingredient" validate:"notblank"`
	Quantity   *float64 `json:"quantity,omitempty" yaml:"quantity" validate:"omitempty,gte=0"`
	Unit       string   `json:"unit,omitempty" yaml:"unit"`
}

// QuantityLabel 卡片上顯示的「數量 單位」，缺少的部分留空
func (i Ingredient) QuantityLabel() string {
	var parts []string
	if i.Quantity != nil {
		parts = append(parts, strconv.FormatFloat(*i.Quantity, 'f', -1, 64))
	}
	if u := strings.TrimSpace(i.Unit); u != "" {
		parts = append(parts, u)
	}
	return strings.Join(parts, " ")
}

// Quantity 建立數量指標的小工具
func Quantity(q float64) *float64 {
	return &q
}

// normalize 所有比對都以小寫、去除首尾空白為準
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
