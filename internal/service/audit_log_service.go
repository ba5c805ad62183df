package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
)

// AuditLogService records who did what to which record
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, username string, action string, resourceType string, resourceID string, details interface{}) error
}

// auditContextKey private key type; plain string keys would collide with
// other packages' context values
type auditContextKey string

const (
	ctxKeyRequestID auditContextKey = "request_id"
	ctxKeyIP        auditContextKey = "ip"
	ctxKeyUserAgent auditContextKey = "user_agent"
)

// WithRequestMetadata attaches the request metadata that RecordAction
// persists. The HTTP layer wraps the request context with this before
// handing it to services.
func WithRequestMetadata(ctx context.Context, requestID, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyRequestID, requestID)
	ctx = context.WithValue(ctx, ctxKeyIP, ip)
	ctx = context.WithValue(ctx, ctxKeyUserAgent, userAgent)
	return ctx
}

// auditLogService implementation
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService creates an audit-log service
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{auditRepo: auditRepo}
}

// RecordAction persists one audit entry; request metadata is read from the context
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	username string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	if s == nil || s.auditRepo == nil {
		return nil
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Username:     username,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    stringFromContext(ctx, ctxKeyRequestID),
		IP:           stringFromContext(ctx, ctxKeyIP),
		UserAgent:    stringFromContext(ctx, ctxKeyUserAgent),
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}

	return s.auditRepo.Save(entry)
}

// stringFromContext reads an optional string value set by the HTTP layer
func stringFromContext(ctx context.Context, key auditContextKey) string {
	if val := ctx.Value(key); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
