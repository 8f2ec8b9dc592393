package browse

import (
	"bytes"
	"net/http"
	"strings"

	"recipe-browser/internal/core/export"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 查詢參數與篩選類別的對應
var facetParams = map[recipe.Kind]string{
	recipe.KindIngredient: "ingredient",
	recipe.KindAppliance:  "appliance",
	recipe.KindUtensil:    "utensil",
}

// QueryRequest 更新搜尋列
type QueryRequest struct {
	Query string `json:"query"`
}

// ToggleRequest 點選下拉選單中的值
type ToggleRequest struct {
	Value string `json:"value" binding:"required"`
}

// OptionsResponse 下拉選單選項
type OptionsResponse struct {
	Kind    recipe.Kind  `json:"kind"`
	Search  string       `json:"search"`
	Options []OptionView `json:"options"`
}

// Search 無狀態查詢：q 與重複的 ingredient、appliance、utensil 參數
func (h *Handler) Search(c *gin.Context) {
	sel := recipe.NewSelection()
	sel.SetQuery(c.Query("q"))

	for _, kind := range recipe.Kinds {
		for _, v := range c.QueryArray(facetParams[kind]) {
			if strings.TrimSpace(v) == "" {
				continue
			}
			if err := sel.Select(kind, v); err != nil {
				h.respondError(c, common.ErrInvalidRequest.Wrap(err))
				return
			}
		}
	}

	result := h.browser.Evaluate(c.Request.Context(), sel)
	c.JSON(http.StatusOK, newResultResponse("", result))
}

// CreateSession 建立新的瀏覽工作階段
func (h *Handler) CreateSession(c *gin.Context) {
	id, result, err := h.browser.Open(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("建立瀏覽工作階段", zap.String("session_id", id))
	c.Header("Location", "/api/v1/sessions/"+id)
	c.JSON(http.StatusCreated, newResultResponse(id, result))
}

// GetSession 讀取工作階段目前的結果
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	result, err := h.browser.View(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(id, result))
}

// DeleteSession 結束工作階段
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.browser.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetQuery 更新搜尋列內容
func (h *Handler) SetQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	h.dispatch(c, recipe.SetQueryCommand{Query: req.Query})
}

// ToggleFacet 切換某個篩選值
func (h *Handler) ToggleFacet(c *gin.Context) {
	kind, err := parseKind(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	h.dispatch(c, recipe.ToggleFacetCommand{Kind: kind, Value: req.Value})
}

// RemoveTag 移除一個標籤
func (h *Handler) RemoveTag(c *gin.Context) {
	value := c.Query("value")
	if strings.TrimSpace(value) == "" {
		h.respondError(c, common.ErrEmptyFacetValue)
		return
	}
	h.dispatch(c, recipe.RemoveTagCommand{Value: value})
}

// Reset 清除所有條件
func (h *Handler) Reset(c *gin.Context) {
	h.dispatch(c, recipe.ResetCommand{})
}

func (h *Handler) dispatch(c *gin.Context, cmd recipe.Command) {
	id := c.Param("id")
	result, err := h.browser.Dispatch(c.Request.Context(), id, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(id, result))
}

// Options 某一類別的下拉選單選項，search 為選單內搜尋
func (h *Handler) Options(c *gin.Context) {
	kind, err := parseKind(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.browser.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	search := c.Query("search")
	c.JSON(http.StatusOK, OptionsResponse{
		Kind:    kind,
		Search:  search,
		Options: newOptionViews(result.Options(kind, search)),
	})
}

// Export 將目前可見的食譜匯出為 Excel
func (h *Handler) Export(c *gin.Context) {
	result, err := h.browser.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, result.Recipes); err != nil {
		h.respondError(c, common.ErrExportFailed.Wrap(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="recettes.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
