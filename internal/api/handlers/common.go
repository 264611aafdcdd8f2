package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/seopilot/internal/providers/llm"
	"github.com/yoockh/seopilot/internal/utils"
)

const codeProvider utils.Code = "PROVIDER_ERROR"

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadGateway, APIError{Code: codeProvider, Message: pe.Message})
		return
	}

	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
