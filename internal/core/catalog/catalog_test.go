package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonCatalog = `[
  {"name": "Salade", "image": "s.jpg", "description": "d", "appliance": "Saladier", "time": 5,
   "ingredients": [{"ingredient": "Tomate", "quantity": 2}], "ustensils": ["couteau"]},
  {"name": "Soupe", "image": "p.jpg", "description": "d", "appliance": "Casserole", "time": 30,
   "ingredients": [{"ingredient": "Poireau", "quantity": 1.5, "unit": "kg"}], "ustensils": []}
]`

const yamlCatalog = `
- name: Salade
  image: s.jpg
  description: d
  appliance: Saladier
  time: 5
  ingredients:
    - ingredient: Tomate
      quantity: 2
  ustensils: [couteau]
- name: Soupe
  image: p.jpg
  description: d
  appliance: Casserole
  time: 30
  ingredients:
    - ingredient: Poireau
      quantity: 1.5
      unit: kg
`

func TestEmbeddedCatalog(t *testing.T) {
	c := Embedded()
	assert.Equal(t, 10, c.Len())
	assert.Equal(t, "Limonade de Coco", c.At(0).Name)

	sel := recipe.NewSelection()
	sel.SetQuery("coco")
	var got []string
	for _, r := range recipe.Filter(c, sel) {
		got = append(got, r.Name)
	}
	assert.Equal(t, []string{"Limonade de Coco", "Poisson Cru à la tahitienne", "Poulet coco réunionnais"}, got)

	facets := recipe.ExtractFacets(c.Recipes())
	assert.True(t, facets.Appliances.Has("four"))
	assert.True(t, facets.Utensils.Has("presse citron"))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		file    string
		content string
	}{
		{"recipes.json", jsonCatalog},
		{"recipes.yaml", yamlCatalog},
		{"recipes.yml", yamlCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			c, err := Load(context.Background(), NewFileSource(path))
			require.NoError(t, err)
			require.Equal(t, 2, c.Len())
			assert.Equal(t, 2, c.At(1).ID)
			assert.Equal(t, "1.5 kg", c.At(1).Ingredients[0].QuantityLabel())
		})
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(filepath.Join(dir, "recipes.csv")).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewFileSource(filepath.Join(dir, "missing.json")).Load(context.Background())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"name": "Sans image", "description": "d", "appliance": "Four", "ingredients": [{"ingredient": "sel"}]}]`), 0o644))
	_, err = NewFileSource(bad).Load(context.Background())
	assert.ErrorIs(t, err, recipe.ErrInvalidCatalog)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	valid := `[{"name": "Soupe", "image": "soupe.jpg", "description": "d", "appliance": "Casserole", "ingredients": [{"ingredient": "poireau"}]}]`

	c, err := Decode([]byte(valid), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Decode([]byte(valid+` []`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode([]byte(valid), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestHTTPSource(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipes.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(jsonCatalog))
		case "/recipes.yaml":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(yamlCatalog))
		case "/flaky":
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(jsonCatalog))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	source := func(path string) *HTTPSource {
		return NewHTTPSource(config.CatalogConfig{URL: srv.URL + path, Timeout: 2 * time.Second, Retries: 2})
	}

	c, err := source("/recipes.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c, err = source("/recipes.yaml").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Soupe", c.At(1).Name)

	c, err = source("/flaky").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.EqualValues(t, 2, calls.Load())

	_, err = source("/missing").Load(context.Background())
	assert.ErrorContains(t, err, "404")
}

func TestPostgresRowConversion(t *testing.T) {
	c := Embedded()

	rows, err := recipesToRows(c.Recipes())
	require.NoError(t, err)
	require.Len(t, rows, c.Len())
	assert.Equal(t, 1, rows[0].Position)
	assert.Contains(t, rows[0].Ingredients, "Lait de coco")

	back, err := rowsToRecipes(rows)
	require.NoError(t, err)
	again, err := recipe.NewCatalog(back)
	require.NoError(t, err)
	assert.Equal(t, c.Version(), again.Version())
}

func TestPostgresRowConversionRejectsBadJSON(t *testing.T) {
	_, err := rowsToRecipes([]recipeRow{{ID: 1, Name: "x", Ingredients: "{"}})
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.CatalogConfig{Source: config.CatalogEmbedded})
	require.NoError(t, err)
	assert.Equal(t, "embedded", src.Name())

	src, err = NewSource(config.CatalogConfig{Source: config.CatalogFile, Path: "x.json"})
	require.NoError(t, err)
	assert.Equal(t, "file:x.json", src.Name())

	_, err = NewSource(config.CatalogConfig{Source: "ftp"})
	assert.Error(t, err)

	_, err = NewSource(config.CatalogConfig{Source: config.CatalogPostgres, Table: "recipes; DROP TABLE x"})
	assert.ErrorContains(t, err, "invalid catalog table name")
}
