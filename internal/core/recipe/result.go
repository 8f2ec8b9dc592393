package recipe

import "strings"

// NoResultsMessage 沒有符合的食譜時顯示的訊息
const NoResultsMessage = "Aucune recette trouvée"

// Visible 篩選後可見的食譜與其可用篩選值。
// 只取決於目錄與 Selection.ResultKey，可以安全快取。
type Visible struct {
	Recipes []Recipe `json:"recipes"`
	Facets  Facets   `json:"facets"`
}

// Narrow 執行篩選並在可見食譜上重新萃取篩選值
func Narrow(c *Catalog, sel *Selection) *Visible {
	recipes := Filter(c, sel)
	return &Visible{
		Recipes: recipes,
		Facets:  ExtractFacets(recipes),
	}
}

// Result 一次狀態變更後提供給呈現層的完整結果
type Result struct {
	Query      string   `json:"query"`
	Recipes    []Recipe `json:"recipes"`
	Facets     Facets   `json:"facets"`
	Selected   Facets   `json:"selected"`
	ActiveTags []Tag    `json:"active_tags"`
}

// WithSelection 加上當下的選取狀態與標籤
func (v *Visible) WithSelection(sel *Selection) *Result {
	return &Result{
		Query:   sel.Query,
		Recipes: v.Recipes,
		Facets:  v.Facets,
		Selected: Facets{
			Ingredients: sel.Ingredients.Clone(),
			Appliances:  sel.Appliances.Clone(),
			Utensils:    sel.Utensils.Clone(),
		},
		ActiveTags: sel.ActiveTags(),
	}
}

// Evaluate 依目錄與選取狀態計算結果，為純函式
func Evaluate(c *Catalog, sel *Selection) *Result {
	return Narrow(c, sel).WithSelection(sel)
}

// Empty 沒有可見的食譜
func (r *Result) Empty() bool {
	return len(r.Recipes) == 0
}

// Option 下拉選單中的一個選項
type Option struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Options 下拉選單選項：已選值排在前面，其後為其餘可用值；
// search 為選單內的搜尋字串，不分大小寫的子字串比對。
func (r *Result) Options(kind Kind, search string) []Option {
	selected := r.Selected.Set(kind)
	available := r.Facets.Set(kind)
	if selected == nil || available == nil {
		return []Option{}
	}

	needle := normalize(search)
	keep := func(v string) bool {
		return needle == "" || strings.Contains(v, needle)
	}

	out := make([]Option, 0, available.Len()+selected.Len())
	for _, v := range selected.values {
		if keep(v) {
			out = append(out, Option{Value: v, Selected: true})
		}
	}
	for _, v := range available.values {
		if !selected.Has(v) && keep(v) {
			out = append(out, Option{Value: v})
		}
	}
	return out
}
