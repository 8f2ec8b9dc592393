package recipe

import "strings"

// predicate 判斷一筆已索引的食譜是否符合
type predicate func(ir *indexedRecipe) bool

// Filter 回傳符合所有生效條件的食譜，保持目錄順序；沒有結果時回傳空切片
func Filter(c *Catalog, sel *Selection) []Recipe {
	preds := predicates(sel)
	out := make([]Recipe, 0, c.Len())
	for i := range c.index {
		if matchAll(&c.index[i], preds) {
			out = append(out, c.recipes[i])
		}
	}
	return out
}

func matchAll(ir *indexedRecipe, preds []predicate) bool {
	for _, p := range preds {
		if !p(ir) {
			return false
		}
	}
	return true
}

// predicates 只組出條件成立的判斷式，其餘視為恆真
func predicates(sel *Selection) []predicate {
	var preds []predicate

	if q := sel.effectiveQuery(); q != "" {
		preds = append(preds, textPredicate(q))
	}
	if sel.Ingredients.Len() > 0 {
		preds = append(preds, allOf(sel.Ingredients.Values(), func(ir *indexedRecipe) map[string]struct{} {
			return ir.ingredient
		}))
	}
	if sel.Appliances.Len() > 0 {
		appliances := sel.Appliances.Clone()
		preds = append(preds, func(ir *indexedRecipe) bool {
			return appliances.Has(ir.appliance)
		})
	}
	if sel.Utensils.Len() > 0 {
		preds = append(preds, allOf(sel.Utensils.Values(), func(ir *indexedRecipe) map[string]struct{} {
			return ir.utensil
		}))
	}
	return preds
}

// textPredicate 名稱或任一食材名稱包含搜尋字串
func textPredicate(q string) predicate {
	return func(ir *indexedRecipe) bool {
		if strings.Contains(ir.name, q) {
			return true
		}
		for _, ing := range ir.ingredients {
			if strings.Contains(ing, q) {
				return true
			}
		}
		return false
	}
}

// allOf 每個已選值都必須出現在食譜中
func allOf(selected []string, field func(ir *indexedRecipe) map[string]struct{}) predicate {
	return func(ir *indexedRecipe) bool {
		have := field(ir)
		for _, v := range selected {
			if _, ok := have[v]; !ok {
				return false
			}
		}
		return true
	}
}
