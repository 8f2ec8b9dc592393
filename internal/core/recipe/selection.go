package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// MinQueryLength 文字搜尋生效所需的最少字元數（去除首尾空白後）
const MinQueryLength = 3

// ErrEmptyFacetValue 切換的篩選值去除空白後為空
var ErrEmptyFacetValue = errors.New("empty facet value")

// Tag 已選取的篩選值，以可移除的標籤顯示
type Tag struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Selection 使用者目前的篩選狀態：搜尋字串與三個篩選集合。
// 集合內的值一律為小寫且去除首尾空白。
type Selection struct {
	Query       string   `json:"query"`
	Ingredients ValueSet `json:"ingredients"`
	Appliances  ValueSet `json:"appliances"`
	Utensils    ValueSet `json:"utensils"`
}

// NewSelection 空的篩選狀態
func NewSelection() *Selection {
	return &Selection{}
}

// SetQuery 原樣保存搜尋字串，正規化留給文字條件處理
func (s *Selection) SetQuery(q string) {
	s.Query = q
}

// ToggleFacet 值存在則移除，否則加入
func (s *Selection) ToggleFacet(kind Kind, value string) error {
	set := s.set(kind)
	if set == nil {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	v := normalize(value)
	if v == "" {
		return ErrEmptyFacetValue
	}
	if !set.Remove(v) {
		set.Add(v)
	}
	return nil
}

// Select 加入值，已選取時不變
func (s *Selection) Select(kind Kind, value string) error {
	set := s.set(kind)
	if set == nil {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	v := normalize(value)
	if v == "" {
		return ErrEmptyFacetValue
	}
	set.Add(v)
	return nil
}

// RemoveTag 從三個集合中一併移除該值，不論它屬於哪一類
func (s *Selection) RemoveTag(value string) {
	v := normalize(value)
	s.Ingredients.Remove(v)
	s.Appliances.Remove(v)
	s.Utensils.Remove(v)
}

// Reset 清空搜尋與所有篩選
func (s *Selection) Reset() {
	*s = Selection{}
}

// Selected 指定類別目前選取的值
func (s *Selection) Selected(kind Kind) []string {
	set := s.set(kind)
	if set == nil {
		return []string{}
	}
	return set.Values()
}

// ActiveTags 依食材、器具、用具的順序攤平所有已選值，同一字串只出現一次
func (s *Selection) ActiveTags() []Tag {
	tags := make([]Tag, 0, s.Ingredients.Len()+s.Appliances.Len()+s.Utensils.Len())
	seen := make(map[string]struct{})
	for _, kind := range Kinds {
		for _, v := range s.set(kind).values {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			tags = append(tags, Tag{Kind: kind, Value: v})
		}
	}
	return tags
}

// IsEmpty 沒有任何生效的條件
func (s *Selection) IsEmpty() bool {
	return s.effectiveQuery() == "" && s.Ingredients.Len() == 0 && s.Appliances.Len() == 0 && s.Utensils.Len() == 0
}

// Clone 深拷貝
func (s *Selection) Clone() *Selection {
	return &Selection{
		Query:       s.Query,
		Ingredients: s.Ingredients.Clone(),
		Appliances:  s.Appliances.Clone(),
		Utensils:    s.Utensils.Clone(),
	}
}

// Equal 搜尋字串相同且三個集合成員相同（不計順序）
func (s *Selection) Equal(o *Selection) bool {
	return s.Query == o.Query &&
		s.Ingredients.SameMembers(&o.Ingredients) &&
		s.Appliances.SameMembers(&o.Appliances) &&
		s.Utensils.SameMembers(&o.Utensils)
}

// resultKey ResultKey 的序列化形式；以 JSON 編碼，值內含任何分隔字元都不會混淆
type resultKey struct {
	Query       string   `json:"q"`
	Ingredients []string `json:"i"`
	Appliances  []string `json:"a"`
	Utensils    []string `json:"u"`
}

// ResultKey 決定篩選結果的正規化鍵：無效的短搜尋視為空，集合排序後編碼
func (s *Selection) ResultKey() string {
	sorted := func(set *ValueSet) []string {
		values := set.Values()
		slices.Sort(values)
		return values
	}
	data, err := json.Marshal(resultKey{
		Query:       s.effectiveQuery(),
		Ingredients: sorted(&s.Ingredients),
		Appliances:  sorted(&s.Appliances),
		Utensils:    sorted(&s.Utensils),
	})
	if err != nil {
		// 只含字串的結構不會編碼失敗
		panic(err)
	}
	return string(data)
}

// effectiveQuery 文字條件實際使用的字串；未達長度門檻時為空
func (s *Selection) effectiveQuery() string {
	q := normalize(s.Query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return ""
	}
	return q
}

func (s *Selection) set(kind Kind) *ValueSet {
	switch kind {
	case KindIngredient:
		return &s.Ingredients
	case KindAppliance:
		return &s.Appliances
	case KindUtensil:
		return &s.Utensils
	}
	return nil
}
