package catalog

import (
	"context"
	_ "embed"

	"recipe-browser/internal/core/recipe"
)

//go:embed data/recipes.json
var embeddedRecipes []byte

// EmbeddedSource 內建的食譜目錄
type EmbeddedSource struct{}

func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{}
}

func (s *EmbeddedSource) Name() string { return "embedded" }

func (s *EmbeddedSource) Load(ctx context.Context) (*recipe.Catalog, error) {
	return Decode(embeddedRecipes, FormatJSON)
}

// Embedded 內建目錄，資料有誤時 panic
func Embedded() *recipe.Catalog {
	c, err := NewEmbeddedSource().Load(context.Background())
	if err != nil {
		panic(err)
	}
	return c
}
