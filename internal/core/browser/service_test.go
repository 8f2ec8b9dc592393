package browser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/core/session"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *recipe.Catalog {
	mk := func(name, appliance string, utensils []string, ingredients ...string) recipe.Recipe {
		r := recipe.Recipe{
			Name:        name,
			Servings:    2,
			Time:        20,
			Description: "Description de " + name,
			Appliance:   appliance,
			Ustensils:   utensils,
			Image:       "recette.jpg",
		}
		for _, ing := range ingredients {
			r.Ingredients = append(r.Ingredients, recipe.Ingredient{Ingredient: ing})
		}
		return r
	}

	return recipe.MustCatalog([]recipe.Recipe{
		mk("Limonade de Coco", "Blender", []string{"cuillère à Soupe", "verres"}, "Lait de coco", "Jus de citron", "Sucre"),
		mk("Poisson Cru à la tahitienne", "Saladier", []string{"presse citron"}, "Thon Rouge (ou blanc)", "Concombre", "Tomate", "Lait de coco"),
		mk("Tarte au thon", "Four", []string{"moule à tarte", "râpe à fromage"}, "Pâte feuilletée", "Thon en miettes", "Tomate"),
	})
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := session.NewMemoryStore(config.SessionConfig{TTL: time.Hour})
	results := cache.NewManager[*recipe.Visible]("results", config.CacheConfig{
		Enabled:         true,
		MaxSize:         100,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() {
		_ = store.Close()
		_ = results.Close()
	})
	return NewService(testCatalog(), store, results)
}

func names(rs []recipe.Recipe) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestOpenReturnsFullCatalog(t *testing.T) {
	s := newTestService(t)
	id, result, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, common.IsUUID(id))
	assert.Len(t, result.Recipes, 3)
	assert.Empty(t, result.ActiveTags)

	n, err := s.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatchSequence(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	id, _, err := s.Open(ctx)
	require.NoError(t, err)

	result, err := s.Dispatch(ctx, id, recipe.SetQueryCommand{Query: "coco"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Limonade de Coco", "Poisson Cru à la tahitienne"}, names(result.Recipes))

	result, err = s.Dispatch(ctx, id, recipe.ToggleFacetCommand{Kind: recipe.KindAppliance, Value: "Blender"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Limonade de Coco"}, names(result.Recipes))
	assert.Equal(t, []recipe.Tag{{Kind: recipe.KindAppliance, Value: "blender"}}, result.ActiveTags)
	assert.Equal(t, []string{"blender"}, result.Facets.Appliances.Values())

	result, err = s.Dispatch(ctx, id, recipe.RemoveTagCommand{Value: "BLENDER"})
	require.NoError(t, err)
	assert.Len(t, result.Recipes, 2)
	assert.Empty(t, result.ActiveTags)

	result, err = s.Dispatch(ctx, id, recipe.ResetCommand{})
	require.NoError(t, err)
	assert.Len(t, result.Recipes, 3)
	assert.Equal(t, "", result.Query)

	viewed, err := s.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, names(result.Recipes), names(viewed.Recipes))
}

func TestDispatchErrors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, "missing", recipe.ResetCommand{})
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	id, _, err := s.Open(ctx)
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, id, recipe.ToggleFacetCommand{Kind: "color", Value: "rouge"})
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.ErrUnknownFacet.Code, ce.Code)
	assert.ErrorIs(t, err, recipe.ErrUnknownKind)

	_, err = s.Dispatch(ctx, id, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: "  "})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.ErrEmptyFacetValue.Code, ce.Code)
}

func TestTagOrderSurvivesCachedResults(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a, _, _ := s.Open(ctx)
	b, _, _ := s.Open(ctx)

	_, err := s.Dispatch(ctx, a, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: "tomate"})
	require.NoError(t, err)
	ra, err := s.Dispatch(ctx, a, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: "thon en miettes"})
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, b, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: "thon en miettes"})
	require.NoError(t, err)
	rb, err := s.Dispatch(ctx, b, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: "tomate"})
	require.NoError(t, err)

	assert.Equal(t, names(ra.Recipes), names(rb.Recipes))
	assert.Equal(t, "tomate", ra.ActiveTags[0].Value)
	assert.Equal(t, "thon en miettes", rb.ActiveTags[0].Value)
	assert.Positive(t, s.CacheStats().Hits)
}

func TestCachedResultMatchesEvaluate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	both := recipe.NewSelection()
	require.NoError(t, both.Select(recipe.KindIngredient, "lait de coco"))
	require.NoError(t, both.Select(recipe.KindIngredient, "sucre"))

	joined := recipe.NewSelection()
	require.NoError(t, joined.Select(recipe.KindIngredient, "lait de coco\x1fsucre"))

	for _, sel := range []*recipe.Selection{both, joined, both, joined} {
		got := s.Evaluate(ctx, sel)
		want := recipe.Evaluate(s.Catalog(), sel)
		assert.Equal(t, names(want.Recipes), names(got.Recipes))
	}
	assert.Len(t, s.Evaluate(ctx, both).Recipes, 1)
	assert.Empty(t, s.Evaluate(ctx, joined).Recipes)
}

func TestEnsureReopensExpiredSession(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	id, _, err := s.Ensure(ctx, "")
	require.NoError(t, err)

	same, _, err := s.Ensure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, same)

	require.NoError(t, s.Close(ctx, id))
	fresh, result, err := s.Ensure(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, fresh)
	assert.Len(t, result.Recipes, 3)
}

func TestConcurrentDispatchOnOneSession(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	id, _, err := s.Open(ctx)
	require.NoError(t, err)

	values := []string{"tomate", "sucre", "concombre", "jus de citron"}
	var wg sync.WaitGroup
	for _, v := range values {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			_, err := s.Dispatch(ctx, id, recipe.ToggleFacetCommand{Kind: recipe.KindIngredient, Value: v})
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	result, err := s.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, len(values), result.Selected.Ingredients.Len())
}

func TestServiceWithoutCache(t *testing.T) {
	store := session.NewMemoryStore(config.SessionConfig{TTL: time.Hour})
	defer store.Close()
	s := NewService(testCatalog(), store, nil)

	result := s.Evaluate(context.Background(), recipe.NewSelection())
	assert.Len(t, result.Recipes, 3)
	assert.Equal(t, cache.Stats{}, s.CacheStats())
}
