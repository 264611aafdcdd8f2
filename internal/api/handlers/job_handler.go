package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/utils"
)

type JobHandler struct {
	jobs    services.JobService
	exports services.ExportService
}

func NewJobHandler(jobs services.JobService, exports services.ExportService) *JobHandler {
	return &JobHandler{jobs: jobs, exports: exports}
}

type CreateJobRequest struct {
	StoreID     string   `json:"store_id"`
	StoreView   string   `json:"store_view"`
	ProductIDs  []string `json:"product_ids" binding:"required"`
	LlmConfigID string   `json:"llm_config_id"`
}

func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Create", "invalid request body", err))
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), services.CreateJobInput{
		StoreID:     optionalString(req.StoreID),
		StoreView:   req.StoreView,
		ProductIDs:  req.ProductIDs,
		LlmConfigID: optionalString(req.LlmConfigID),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Drafts(c *gin.Context) {
	drafts, err := h.jobs.ListDrafts(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": drafts, "count": len(drafts)})
}

func (h *JobHandler) Export(c *gin.Context) {
	res, err := h.exports.ExportJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *JobHandler) Exports(c *gin.Context) {
	objs, err := h.exports.ListExports(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": objs})
}
