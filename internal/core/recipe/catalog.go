package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCatalog 目錄中有不合法的食譜，整批載入失敗
var ErrInvalidCatalog = errors.New("invalid catalog")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Catalog 固定的食譜目錄，建立後唯讀
type Catalog struct {
	recipes []Recipe
	index   []indexedRecipe
	version string
}

// indexedRecipe 預先正規化的比對欄位
type indexedRecipe struct {
	name        string
	ingredients []string
	ingredient  map[string]struct{}
	appliance   string
	utensil     map[string]struct{}
}

// NewCatalog 驗證並建立目錄；任何一筆不合法即拒絕整個目錄
func NewCatalog(recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]Recipe, len(recipes)),
		index:   make([]indexedRecipe, len(recipes)),
	}

	for i, r := range recipes {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: recipe #%d (%q): %v", ErrInvalidCatalog, i+1, r.Name, err)
		}
		if r.ID == 0 {
			r.ID = i + 1
		}
		c.recipes[i] = r
		c.index[i] = indexRecipe(r)
	}

	version, err := catalogVersion(c.recipes)
	if err != nil {
		return nil, err
	}
	c.version = version
	return c, nil
}

// MustCatalog 與 NewCatalog 相同，失敗時 panic（內建資料與測試用）
func MustCatalog(recipes []Recipe) *Catalog {
	c, err := NewCatalog(recipes)
	if err != nil {
		panic(err)
	}
	return c
}

func indexRecipe(r Recipe) indexedRecipe {
	ir := indexedRecipe{
		name:        normalize(r.Name),
		ingredients: make([]string, 0, len(r.Ingredients)),
		ingredient:  make(map[string]struct{}, len(r.Ingredients)),
		appliance:   normalize(r.Appliance),
		utensil:     make(map[string]struct{}, len(r.Ustensils)),
	}
	for _, ing := range r.Ingredients {
		name := normalize(ing.Ingredient)
		ir.ingredients = append(ir.ingredients, name)
		ir.ingredient[name] = struct{}{}
	}
	for _, u := range r.Ustensils {
		ir.utensil[normalize(u)] = struct{}{}
	}
	return ir
}

func catalogVersion(recipes []Recipe) (string, error) {
	data, err := json.Marshal(recipes)
	if err != nil {
		return "", fmt.Errorf("failed to hash catalog: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// Len 食譜數量
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Recipes 依目錄順序回傳所有食譜
func (c *Catalog) Recipes() []Recipe {
	return slices.Clone(c.recipes)
}

// At 取得第 i 筆食譜
func (c *Catalog) At(i int) Recipe {
	return c.recipes[i]
}

// Version 目錄內容雜湊，作為快取命名空間
func (c *Catalog) Version() string {
	return c.version
}
