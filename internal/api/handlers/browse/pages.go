package browse

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// 卡片縮圖寬度
const cardImageWidth = 380

var facetLabels = map[recipe.Kind]string{
	recipe.KindIngredient: "Ingrédients",
	recipe.KindAppliance:  "Appareils",
	recipe.KindUtensil:    "Ustensiles",
}

type pageData struct {
	Query     string
	Count     int
	Cards     []cardView
	Dropdowns []dropdownView
	Tags      []recipe.Tag
	Searches  []searchParam
	NoResults string
}

type cardView struct {
	Name        string
	Image       string
	Time        int
	Description string
	Ingredients []ingredientView
}

type ingredientView struct {
	Name     string
	Quantity string
}

type dropdownView struct {
	Kind    recipe.Kind
	Label   string
	Param   string
	Search  string
	Options []recipe.Option
}

// searchParam 下拉選單內的搜尋字串，在表單之間保留
type searchParam struct {
	Name  string
	Value string
}

// searchParamName 下拉選單搜尋的查詢參數名稱
func searchParamName(kind recipe.Kind) string {
	return string(kind) + "_search"
}

func newPageData(result *recipe.Result, searches url.Values) pageData {
	data := pageData{
		Query: result.Query,
		Count: len(result.Recipes),
		Cards: make([]cardView, 0, len(result.Recipes)),
		Tags:  result.ActiveTags,
	}

	for _, r := range result.Recipes {
		card := cardView{
			Name:        r.Name,
			Image:       "/images/" + url.PathEscape(r.Image) + "?w=" + strconv.Itoa(cardImageWidth),
			Time:        r.Time,
			Description: r.Description,
		}
		for _, ing := range r.Ingredients {
			card.Ingredients = append(card.Ingredients, ingredientView{Name: ing.Ingredient, Quantity: ing.QuantityLabel()})
		}
		data.Cards = append(data.Cards, card)
	}

	for _, kind := range recipe.Kinds {
		param := searchParamName(kind)
		search := searches.Get(param)
		data.Dropdowns = append(data.Dropdowns, dropdownView{
			Kind:    kind,
			Label:   facetLabels[kind],
			Param:   param,
			Search:  search,
			Options: result.Options(kind, search),
		})
		if search != "" {
			data.Searches = append(data.Searches, searchParam{Name: param, Value: search})
		}
	}

	if result.Empty() {
		data.NoResults = recipe.NoResultsMessage
	}
	return data
}

// Index 主頁：搜尋列、三個下拉選單、標籤與食譜卡片
func (h *Handler) Index(c *gin.Context) {
	id, result, err := h.browser.Ensure(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.setSessionCookie(c, id)

	c.HTML(http.StatusOK, "index.html", newPageData(result, c.Request.URL.Query()))
}

// SubmitSearch 搜尋列表單
func (h *Handler) SubmitSearch(c *gin.Context) {
	h.pageCommand(c, recipe.SetQueryCommand{Query: c.PostForm("q")})
}

// SubmitToggle 下拉選單選項表單
func (h *Handler) SubmitToggle(c *gin.Context) {
	kind, err := parseKind(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.pageCommand(c, recipe.ToggleFacetCommand{Kind: kind, Value: c.PostForm("value")})
}

// SubmitRemoveTag 標籤關閉按鈕表單
func (h *Handler) SubmitRemoveTag(c *gin.Context) {
	h.pageCommand(c, recipe.RemoveTagCommand{Value: c.PostForm("value")})
}

// SubmitReset 清除全部條件
func (h *Handler) SubmitReset(c *gin.Context) {
	h.pageCommand(c, recipe.ResetCommand{})
}

// pageCommand 套用操作後以 303 導回主頁，保留下拉選單搜尋字串
func (h *Handler) pageCommand(c *gin.Context, cmd recipe.Command) {
	ctx := c.Request.Context()

	id, _, err := h.browser.Ensure(ctx, h.sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.setSessionCookie(c, id)

	if _, err := h.browser.Dispatch(ctx, id, cmd); err != nil {
		var ce *common.CustomError
		if !errors.As(err, &ce) || ce.Status >= http.StatusInternalServerError {
			h.respondError(c, err)
			return
		}
		// 無效的操作不改變狀態
		_ = c.Error(err)
	}

	c.Redirect(http.StatusSeeOther, redirectTarget(c))
}

func redirectTarget(c *gin.Context) string {
	params := url.Values{}
	for _, kind := range recipe.Kinds {
		name := searchParamName(kind)
		if v := c.PostForm(name); v != "" {
			params.Set(name, v)
		}
	}
	if len(params) == 0 {
		return "/"
	}
	return "/?" + params.Encode()
}

func (h *Handler) sessionID(c *gin.Context) string {
	id, err := c.Cookie(h.session.CookieName)
	if err != nil || !common.IsUUID(id) {
		return ""
	}
	return id
}

func (h *Handler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, id, int(h.session.TTL.Seconds()), "/", "", false, true)
}
