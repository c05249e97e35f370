package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type auditQueue interface {
	Enqueue(payload models.AuditLog) error
}

// AuditEvent describes one audited mutation before it is persisted.
type AuditEvent struct {
	ActorEmail string
	Action     string
	Resource   string
	ResourceID string
	Detail     map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// AuditService writes audit logs off the request path through a jobs queue.
type AuditService struct {
	repo   auditRepository
	queue  auditQueue
	logger *zap.Logger
}

// NewAuditService wires the service. Call Attach to route Record through a queue; without
// one, Record writes synchronously.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Attach routes subsequent Record calls through queue.
func (s *AuditService) Attach(queue auditQueue) {
	s.queue = queue
}

// Handle persists a queued audit log. It is the queue's job handler.
func (s *AuditService) Handle(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	entry := job.Payload
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.repo.Create(writeCtx, &entry)
}

// Record captures event. Failures are logged; auditing never fails the caller.
func (s *AuditService) Record(ctx context.Context, event AuditEvent) {
	if s == nil {
		return
	}
	entry := models.AuditLog{
		ActorEmail: event.ActorEmail,
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}
	if len(event.Detail) > 0 {
		raw, err := json.Marshal(event.Detail)
		if err != nil {
			s.logger.Warn("audit detail not encodable", zap.String("action", event.Action), zap.Error(err))
		} else {
			entry.Detail = types.JSONText(raw)
		}
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(entry); err != nil {
			s.logger.Warn("audit enqueue failed", zap.String("action", event.Action), zap.Error(err))
		}
		return
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", event.Action), zap.Error(err))
	}
}
