package usecase

import (
	"context"
	"encoding/json"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

// 監査ログを作成（before/afterはJSONにして保存）
func writeAudit(
	ctx context.Context,
	logs repo.AuditLogRepository,
	actorUserID int64,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before, after interface{},
) error {
	if err := logs.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
	}); err != nil {
		return dbError("audit log create", err)
	}
	return nil
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
