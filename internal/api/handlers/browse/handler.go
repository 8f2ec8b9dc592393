package browse

import (
	"embed"
	"html/template"
	"net/http"

	"recipe-browser/internal/core/browser"
	"recipe-browser/internal/core/image"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates 頁面模板，由路由註冊到 gin 引擎
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// Handler 食譜瀏覽處理程序：HTML 頁面、JSON API 與縮圖
type Handler struct {
	browser *browser.Service
	images  *image.Service
	session config.SessionConfig
	debug   bool
}

// NewHandler 創建新的食譜瀏覽處理程序
func NewHandler(svc *browser.Service, images *image.Service, session config.SessionConfig, debug bool) *Handler {
	return &Handler{
		browser: svc,
		images:  images,
		session: session,
		debug:   debug,
	}
}

// ResultResponse API 回傳的篩選結果。
// 值一律原樣回傳，可直接送回 toggle 與 remove；*_label 欄位為跳脫後的顯示字串。
type ResultResponse struct {
	SessionID  string              `json:"session_id,omitempty"`
	Query      string              `json:"query"`
	QueryLabel string              `json:"query_label"`
	Count      int                 `json:"count"`
	Recipes    []recipe.Recipe     `json:"recipes"`
	Facets     recipe.Facets       `json:"facets"`
	Selected   map[string][]string `json:"selected"`
	ActiveTags []TagView           `json:"active_tags"`
	Message    string              `json:"message,omitempty"`
}

// TagView 已選標籤
type TagView struct {
	Kind  recipe.Kind `json:"kind"`
	Value string      `json:"value"`
	Label string      `json:"label"`
}

// OptionView 下拉選單選項
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func newResultResponse(id string, r *recipe.Result) ResultResponse {
	resp := ResultResponse{
		SessionID:  id,
		Query:      r.Query,
		QueryLabel: recipe.Sanitize(r.Query),
		Count:      len(r.Recipes),
		Recipes:    r.Recipes,
		Facets:     r.Facets,
		Selected:   make(map[string][]string, len(recipe.Kinds)),
		ActiveTags: make([]TagView, 0, len(r.ActiveTags)),
	}
	for _, kind := range recipe.Kinds {
		resp.Selected[kind.Plural()] = r.Selected.Set(kind).Values()
	}
	for _, tag := range r.ActiveTags {
		resp.ActiveTags = append(resp.ActiveTags, TagView{Kind: tag.Kind, Value: tag.Value, Label: recipe.Sanitize(tag.Value)})
	}
	if r.Empty() {
		resp.Message = recipe.NoResultsMessage
	}
	return resp
}

func newOptionViews(options []recipe.Option) []OptionView {
	out := make([]OptionView, len(options))
	for i, opt := range options {
		out[i] = OptionView{Value: opt.Value, Label: recipe.Sanitize(opt.Value), Selected: opt.Selected}
	}
	return out
}

// respondError 統一的錯誤響應
func (h *Handler) respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(h.debug))
}

// parseKind 解析路徑中的篩選類別
func parseKind(c *gin.Context) (recipe.Kind, error) {
	kind, err := recipe.ParseKind(c.Param("kind"))
	if err != nil {
		return "", common.ErrUnknownFacet.Wrap(err)
	}
	return kind, nil
}
