package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/pkg/jobs"
)

func TestAuditServiceWritesThroughQueue(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, nil)
	queue := jobs.NewQueue[models.AuditLog]("audit", svc.Handle, jobs.QueueConfig{Workers: 2})
	svc.Attach(queue)

	queue.Start(context.Background())
	actor := Actor{Email: "admin@x.com", IPAddress: "10.0.0.1", UserAgent: "test"}
	svc.Record(context.Background(), actor.event(models.AuditActionClassStatus, "class", "c1", map[string]interface{}{"status": "approved"}))
	svc.Record(context.Background(), actor.event(models.AuditActionLogout, "auth", "jti", nil))
	queue.Stop()

	require.Len(t, repo.logs, 2)
	var statusLog models.AuditLog
	for _, l := range repo.logs {
		if l.Action == models.AuditActionClassStatus {
			statusLog = l
		}
	}
	assert.Equal(t, "10.0.0.1", statusLog.IPAddress)
	var detail map[string]string
	require.NoError(t, json.Unmarshal(statusLog.Detail, &detail))
	assert.Equal(t, "approved", detail["status"])
}

func TestAuditServiceStoppedQueueDoesNotFailCaller(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, nil)
	svc.Attach(jobs.NewQueue[models.AuditLog]("audit", svc.Handle, jobs.QueueConfig{}))

	svc.Record(context.Background(), AuditEvent{Action: models.AuditActionEnroll})
	assert.Empty(t, repo.logs)

	var nilSvc *AuditService
	nilSvc.Record(context.Background(), AuditEvent{Action: models.AuditActionEnroll})
}

func TestAuditServiceSynchronousWithoutQueue(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, nil)

	svc.Record(context.Background(), AuditEvent{Action: models.AuditActionRolePromote, ActorEmail: "admin@x.com"})
	assert.Equal(t, []string{models.AuditActionRolePromote}, repo.actions())
}
