package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/utils"
)

type StoreHandler struct {
	svc services.CatalogSyncService
}

func NewStoreHandler(svc services.CatalogSyncService) *StoreHandler {
	return &StoreHandler{svc: svc}
}

type RegisterStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	BaseURL  string `json:"base_url" binding:"required"`
	APIToken string `json:"api_token" binding:"required"`
}

func (h *StoreHandler) Register(c *gin.Context) {
	var req RegisterStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "StoreHandler.Register", "invalid request body", err))
		return
	}

	st, err := h.svc.Register(c.Request.Context(), services.RegisterStoreInput{
		Name:     req.Name,
		URL:      req.BaseURL,
		APIToken: req.APIToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *StoreHandler) Get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), c.Param("store_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoreHandler) Sync(c *gin.Context) {
	storeID := c.Param("store_id")
	if err := h.svc.RequestSync(c.Request.Context(), storeID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"store_id": storeID, "status": "queued"})
}
