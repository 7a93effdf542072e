package usecase

import (
	"context"
	"strings"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

type AuditLogQuery struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         string
	To           string
	Page         int
	Limit        int
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// GET /admin/audit-logs
func (u *AuditLogUsecase) List(ctx context.Context, q AuditLogQuery) (AuditLogListOutput, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	f := repo.AuditLogFilter{
		ActorUserID: q.ActorUserID,
		ResourceID:  q.ResourceID,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if a := strings.ToUpper(strings.TrimSpace(q.Action)); a != "" {
		action := model.AuditAction(a)
		f.Action = &action
	}
	if rt := strings.ToLower(strings.TrimSpace(q.ResourceType)); rt != "" {
		resource := model.AuditResourceType(rt)
		f.ResourceType = &resource
	}

	var ok bool
	if f.CreatedFrom, ok = parseDateTimeRFC3339(q.From); !ok {
		return AuditLogListOutput{}, badRequest("invalid from")
	}
	if f.CreatedTo, ok = parseDateTimeRFC3339(q.To); !ok {
		return AuditLogListOutput{}, badRequest("invalid to")
	}

	logs, total, err := u.logs.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, dbError("audit log list", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: page, Limit: limit}, nil
}
