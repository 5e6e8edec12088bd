package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
)

// AuditEvent says that Actor performed Action on one entity.
type AuditEvent struct {
	Actor    int64
	Action   string
	Entity   string
	EntityID int64
}

// AuditSink consumes audit events once the business change is committed.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

// AuditWriter appends events to the audit table. Failures are logged and
// counted; they never reach the caller.
type AuditWriter struct {
	Repo    *repos.AuditRepo
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewAuditWriter(repo *repos.AuditRepo, m *metrics.Metrics) *AuditWriter {
	return &AuditWriter{Repo: repo, Metrics: m, Now: now}
}

func (w *AuditWriter) Record(ctx context.Context, ev AuditEvent) {
	a := domain.Audit{
		UserID:      actorRef(ev.Actor),
		Action:      ev.Action,
		EntityClass: ev.Entity,
		EntityID:    ev.EntityID,
		OccurredAt:  w.Now(),
	}
	if err := w.Repo.Append(ctx, &a); err != nil {
		w.Metrics.AuditFailed()
		applog.L().Error("audit.write",
			zap.String("entity", ev.Entity),
			zap.Int64("entity_id", ev.EntityID),
			zap.String("audit_action", ev.Action),
			zap.Error(err))
	}
}

// Trail is the audit view of one entity.
type Trail struct {
	History []domain.Audit
	Creator *domain.Audit // first create
	Editor  *domain.Audit // latest update
}

type AuditService struct {
	Repo *repos.AuditRepo
}

func (s *AuditService) Trail(ctx context.Context, entity string, id int64) (Trail, error) {
	var t Trail
	var err error
	if t.History, err = s.Repo.History(ctx, entity, id); err != nil {
		return Trail{}, err
	}
	if t.Creator, err = optional(s.Repo.First(ctx, entity, id, domain.ActionCreate)); err != nil {
		return Trail{}, err
	}
	if t.Editor, err = optional(s.Repo.Latest(ctx, entity, id, domain.ActionUpdate)); err != nil {
		return Trail{}, err
	}
	return t, nil
}

func optional(a domain.Audit, err error) (*domain.Audit, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// now is the timestamp source for rows written by the services. Second
// precision keeps stored values in one lexical format.
func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// actorRef turns a user id into a nullable reference; 0 means no user.
func actorRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
