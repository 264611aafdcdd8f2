package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/utils"
)

type ProductHandler struct {
	preview services.PreviewService
}

func NewProductHandler(preview services.PreviewService) *ProductHandler {
	return &ProductHandler{preview: preview}
}

type PreviewRequest struct {
	LlmConfigID string `json:"llm_config_id"`
}

// Preview runs the pipeline synchronously; the body is optional.
func (h *ProductHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProductHandler.Preview", "invalid request body", err))
		return
	}

	res, err := h.preview.Preview(c.Request.Context(), c.Param("product_id"), req.LlmConfigID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
