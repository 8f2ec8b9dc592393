package recipe

// Command 呈現層回報的使用者操作，一律轉為對 Selection 的單一變更
type Command interface {
	Name() string
	Apply(sel *Selection) error
}

// SetQueryCommand 更新搜尋列內容
type SetQueryCommand struct {
	Query string `json:"query"`
}

func (c SetQueryCommand) Name() string { return "set_query" }

func (c SetQueryCommand) Apply(sel *Selection) error {
	sel.SetQuery(c.Query)
	return nil
}

// ToggleFacetCommand 點選下拉選單中的某個值
type ToggleFacetCommand struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

func (c ToggleFacetCommand) Name() string { return "toggle_facet" }

func (c ToggleFacetCommand) Apply(sel *Selection) error {
	return sel.ToggleFacet(c.Kind, c.Value)
}

// RemoveTagCommand 點擊標籤上的關閉按鈕
type RemoveTagCommand struct {
	Value string `json:"value"`
}

func (c RemoveTagCommand) Name() string { return "remove_tag" }

func (c RemoveTagCommand) Apply(sel *Selection) error {
	sel.RemoveTag(c.Value)
	return nil
}

// ResetCommand 清除所有條件
type ResetCommand struct{}

func (c ResetCommand) Name() string { return "reset" }

func (c ResetCommand) Apply(sel *Selection) error {
	sel.Reset()
	return nil
}
