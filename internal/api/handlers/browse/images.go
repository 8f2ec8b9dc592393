package browse

import (
	"net/http"
	"strconv"

	"recipe-browser/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Thumbnail 食譜卡片縮圖，w 為寬度（像素）
func (h *Handler) Thumbnail(c *gin.Context) {
	width := 0
	if w := c.Query("w"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			h.respondError(c, common.ErrInvalidRequest.Wrap(err))
			return
		}
		width = n
	}

	data, err := h.images.Thumbnail(c.Request.Context(), c.Param("name"), width)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", data)
}
