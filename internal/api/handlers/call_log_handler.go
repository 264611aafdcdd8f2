package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/utils"
)

type CallLogHandler struct {
	logs services.CallLogService
}

func NewCallLogHandler(logs services.CallLogService) *CallLogHandler {
	return &CallLogHandler{logs: logs}
}

func (h *CallLogHandler) List(c *gin.Context) {
	f := models.CallLogFilter{
		ProductID: c.Query("product_id"),
		JobID:     c.Query("job_id"),
		AgentType: models.AgentType(c.Query("agent_type")),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "CallLogHandler.List", "limit must be a number", err))
			return
		}
		f.Limit = n
	}

	rows, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows)})
}
