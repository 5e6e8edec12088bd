package services

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
)

type CategoryInput struct {
	Name string `form:"name" validate:"required,max=80"`
}

type CategoryService struct {
	Base
}

func (s *CategoryService) List(ctx context.Context, includeArchived bool) ([]domain.Category, error) {
	return repos.NewCategoryRepo(s.DB).List(ctx, includeArchived)
}

func (s *CategoryService) Create(ctx context.Context, actor int64, in CategoryInput) (c domain.Category, err error) {
	defer func() { s.observe("category.create", err) }()
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return domain.Category{}, err
	}
	c = domain.Category{Name: in.Name}
	if err := repos.NewCategoryRepo(s.DB).Insert(ctx, &c); err != nil {
		if repos.IsUniqueViolation(err) {
			return domain.Category{}, invalid("name", "a category with this name already exists")
		}
		return domain.Category{}, err
	}
	s.record(ctx, actor, domain.ActionCreate, domain.EntityCategory, c.ID)
	return c, nil
}

func (s *CategoryService) SoftDelete(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("category.soft_delete", err) }()
	return s.setArchived(ctx, actor, domain.EntityCategory, id, true, s.load(id), s.save(id))
}

func (s *CategoryService) Restore(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("category.restore", err) }()
	return s.setArchived(ctx, actor, domain.EntityCategory, id, false, s.load(id), s.save(id))
}

func (s *CategoryService) load(id int64) func(context.Context, *sqlx.Tx) (domain.Archivable, error) {
	return func(ctx context.Context, tx *sqlx.Tx) (domain.Archivable, error) {
		c, err := repos.NewCategoryRepo(tx).Get(ctx, id)
		if err != nil {
			return nil, lookup("category", err)
		}
		return &c, nil
	}
}

func (s *CategoryService) save(id int64) func(context.Context, *sqlx.Tx, *time.Time) error {
	return func(ctx context.Context, tx *sqlx.Tx, at *time.Time) error {
		return repos.NewCategoryRepo(tx).SetDeletedAt(ctx, id, at)
	}
}
