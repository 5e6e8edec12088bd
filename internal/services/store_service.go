package services

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
)

type StoreInput struct {
	Name        string `form:"name" validate:"required,max=120"`
	Address     string `form:"address" validate:"required,max=255"`
	Manager     string `form:"manager" validate:"max=120"`
	Region      string `form:"region" validate:"max=32"`
	CodeFR      string `form:"code_fr" validate:"max=32"`
	Status      string `form:"status" validate:"oneof=open closed"`
	ProjectType string `form:"project_type" validate:"oneof=creation reconstruction"`
	OpenedOn    string `form:"opened_on"` // YYYY-MM-DD, optional
}

type StoreService struct {
	Base
}

type StoreDetail struct {
	Store       domain.Store
	Assignments []domain.Assignment
	Movements   []domain.Movement
	Trail       Trail
}

func (s *StoreService) Get(ctx context.Context, id int64) (domain.Store, error) {
	st, err := repos.NewStoreRepo(s.DB).Get(ctx, id)
	return st, lookup("store", err)
}

func (s *StoreService) Detail(ctx context.Context, id int64) (StoreDetail, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return StoreDetail{}, err
	}
	d := StoreDetail{Store: st}
	if d.Assignments, err = repos.NewAssignmentRepo(s.DB).ByStore(ctx, id, false); err != nil {
		return StoreDetail{}, err
	}
	if d.Movements, err = repos.NewMovementRepo(s.DB).ByStore(ctx, id); err != nil {
		return StoreDetail{}, err
	}
	if d.Trail, err = (&AuditService{Repo: repos.NewAuditRepo(s.DB)}).Trail(ctx, domain.EntityStore, id); err != nil {
		return StoreDetail{}, err
	}
	return d, nil
}

func (s *StoreService) List(ctx context.Context, f repos.Filter) ([]domain.Store, repos.Page, error) {
	return repos.NewStoreRepo(s.DB).List(ctx, f)
}

// All lists stores by name for select boxes and filters.
func (s *StoreService) All(ctx context.Context, includeArchived bool) ([]domain.Store, error) {
	return repos.NewStoreRepo(s.DB).All(ctx, includeArchived)
}

func (in StoreInput) store() (domain.Store, error) {
	st := domain.Store{
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		Manager:     strings.TrimSpace(in.Manager),
		Region:      strings.TrimSpace(in.Region),
		CodeFR:      strings.TrimSpace(in.CodeFR),
		Status:      in.Status,
		ProjectType: in.ProjectType,
	}
	if err := check(in); err != nil {
		return domain.Store{}, err
	}
	if v := strings.TrimSpace(in.OpenedOn); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return domain.Store{}, invalid("opened_on", "opened_on must be a date (YYYY-MM-DD)")
		}
		st.OpenedOn = &d
	}
	return st, nil
}

func (s *StoreService) Create(ctx context.Context, actor int64, in StoreInput) (st domain.Store, err error) {
	defer func() { s.observe("store.create", err) }()
	if st, err = in.store(); err != nil {
		return domain.Store{}, err
	}
	if err := repos.NewStoreRepo(s.DB).Insert(ctx, &st); err != nil {
		return domain.Store{}, err
	}
	s.record(ctx, actor, domain.ActionCreate, domain.EntityStore, st.ID)
	return st, nil
}

func (s *StoreService) Update(ctx context.Context, actor, id int64, in StoreInput) (err error) {
	defer func() { s.observe("store.update", err) }()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	st, err := in.store()
	if err != nil {
		return err
	}
	st.ID = id
	if err := repos.NewStoreRepo(s.DB).Update(ctx, st); err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionUpdate, domain.EntityStore, id)
	return nil
}

func (s *StoreService) SoftDelete(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("store.soft_delete", err) }()
	return s.setArchived(ctx, actor, domain.EntityStore, id, true, s.load(id), s.save(id))
}

func (s *StoreService) Restore(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("store.restore", err) }()
	return s.setArchived(ctx, actor, domain.EntityStore, id, false, s.load(id), s.save(id))
}

func (s *StoreService) load(id int64) func(context.Context, *sqlx.Tx) (domain.Archivable, error) {
	return func(ctx context.Context, tx *sqlx.Tx) (domain.Archivable, error) {
		st, err := repos.NewStoreRepo(tx).Get(ctx, id)
		if err != nil {
			return nil, lookup("store", err)
		}
		return &st, nil
	}
}

func (s *StoreService) save(id int64) func(context.Context, *sqlx.Tx, *time.Time) error {
	return func(ctx context.Context, tx *sqlx.Tx, at *time.Time) error {
		return repos.NewStoreRepo(tx).SetDeletedAt(ctx, id, at)
	}
}
