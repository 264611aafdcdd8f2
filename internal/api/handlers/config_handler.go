package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/utils"
)

type ConfigHandler struct {
	configs services.ConfigProvider
}

func NewConfigHandler(configs services.ConfigProvider) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// Active shows which configuration a stage would run with right now.
func (h *ConfigHandler) Active(c *gin.Context) {
	pt := models.PromptType(c.Query("prompt_type"))
	if pt != models.PromptTypeWriter && pt != models.PromptTypeAuditor {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConfigHandler.Active", "prompt_type must be writer or auditor", nil))
		return
	}

	rc, err := h.configs.Resolve(c.Request.Context(), pt, optionalString(c.Query("store_id")), "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}
