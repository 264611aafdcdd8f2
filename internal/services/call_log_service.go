package services

import (
	"context"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

const maxCallLogLimit = 500

// CallLogReader is implemented by both the postgres and mongo call-log
// repositories.
type CallLogReader interface {
	List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error)
}

type CallLogService interface {
	List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error)
}

type callLogService struct {
	logs CallLogReader
}

func NewCallLogService(logs CallLogReader) CallLogService {
	return &callLogService{logs: logs}
}

func (s *callLogService) List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error) {
	const op = "CallLogService.List"

	if f.Limit < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "limit must be positive", nil)
	}
	if f.Limit > maxCallLogLimit {
		f.Limit = maxCallLogLimit
	}
	out, err := s.logs.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list call logs", err)
	}
	return out, nil
}
