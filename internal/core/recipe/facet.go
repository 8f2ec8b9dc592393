package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownKind 未知的篩選類別
var ErrUnknownKind = errors.New("unknown facet kind")

// Kind 篩選類別
type Kind string

const (
	KindIngredient Kind = "ingredient"
	KindAppliance  Kind = "appliance"
	KindUtensil    Kind = "utensil"
)

// Kinds 依顯示順序列出所有類別
var Kinds = []Kind{KindIngredient, KindAppliance, KindUtensil}

// ParseKind 解析類別名稱，接受單複數以及 ustensil 拼法
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ingredient", "ingredients":
		return KindIngredient, nil
	case "appliance", "appliances":
		return KindAppliance, nil
	case "utensil", "utensils", "ustensil", "ustensils":
		return KindUtensil, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Plural 用於 JSON 欄位與頁面標題
func (k Kind) Plural() string {
	return string(k) + "s"
}

// ValueSet 保留插入順序且不重複的字串集合，零值可直接使用
type ValueSet struct {
	values []string
	index  map[string]struct{}
}

// NewValueSet 依序加入 values
func NewValueSet(values ...string) ValueSet {
	var s ValueSet
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add 加入值，已存在時回傳 false
func (s *ValueSet) Add(v string) bool {
	if s.Has(v) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Remove 移除值，不存在時回傳 false
func (s *ValueSet) Remove(v string) bool {
	if !s.Has(v) {
		return false
	}
	delete(s.index, v)
	s.values = slices.DeleteFunc(s.values, func(x string) bool { return x == v })
	return true
}

// Has 是否包含 v
func (s *ValueSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len 元素數量
func (s *ValueSet) Len() int {
	return len(s.values)
}

// Values 依插入順序回傳所有值（複本）
func (s *ValueSet) Values() []string {
	if len(s.values) == 0 {
		return []string{}
	}
	return slices.Clone(s.values)
}

// Clone 深拷貝
func (s *ValueSet) Clone() ValueSet {
	return NewValueSet(s.values...)
}

// SameMembers 不計順序比較兩個集合
func (s *ValueSet) SameMembers(o *ValueSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, v := range s.values {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// SubsetOf 是否為 o 的子集合
func (s *ValueSet) SubsetOf(o *ValueSet) bool {
	for _, v := range s.values {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// MarshalJSON 序列化為陣列
func (s ValueSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON 由陣列還原，重複值會被忽略
func (s *ValueSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewValueSet(values...)
	return nil
}

// Facets 三種篩選類別各自的值集合
type Facets struct {
	Ingredients ValueSet `json:"ingredients"`
	Appliances  ValueSet `json:"appliances"`
	Utensils    ValueSet `json:"utensils"`
}

// Set 取得指定類別的集合
func (f *Facets) Set(kind Kind) *ValueSet {
	switch kind {
	case KindIngredient:
		return &f.Ingredients
	case KindAppliance:
		return &f.Appliances
	case KindUtensil:
		return &f.Utensils
	}
	return nil
}

// ExtractFacets 掃描食譜，收集小寫後的食材、器具與用具；順序為首次出現順序
func ExtractFacets(recipes []Recipe) Facets {
	var f Facets
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			f.Ingredients.Add(normalize(ing.Ingredient))
		}
		f.Appliances.Add(normalize(r.Appliance))
		for _, u := range r.Ustensils {
			f.Utensils.Add(normalize(u))
		}
	}
	return f
}
