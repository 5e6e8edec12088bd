package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
	"equiptrack/internal/validate"
)

type EquipmentInput struct {
	Name          string `form:"name" validate:"required,max=120"`
	Reference     string `form:"reference" validate:"required,max=64"`
	CategoryID    int64  `form:"category_id" validate:"required"`
	State         string `form:"state" validate:"oneof=new used damaged"`
	StockQuantity int    `form:"stock_quantity" validate:"gte=0"`
}

type AdjustInput struct {
	Direction string `form:"direction" validate:"oneof=increase decrease"`
	Quantity  int    `form:"quantity" validate:"gt=0"`
}

type EquipmentService struct {
	Base
	Now func() time.Time
}

func NewEquipmentService(b Base) *EquipmentService {
	return &EquipmentService{Base: b, Now: now}
}

type EquipmentDetail struct {
	Equipment domain.Equipment
	// OpenAssignments counts live assignments with units still out.
	OpenAssignments int
	Movements       []domain.Movement
	Trail           Trail
}

func (s *EquipmentService) Get(ctx context.Context, id int64) (domain.Equipment, error) {
	e, err := repos.NewEquipmentRepo(s.DB).Get(ctx, id)
	return e, lookup("equipment", err)
}

func (s *EquipmentService) Detail(ctx context.Context, id int64) (EquipmentDetail, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return EquipmentDetail{}, err
	}
	d := EquipmentDetail{Equipment: e}
	if d.OpenAssignments, err = repos.NewAssignmentRepo(s.DB).OpenCountForEquipment(ctx, id); err != nil {
		return EquipmentDetail{}, err
	}
	if d.Movements, err = repos.NewMovementRepo(s.DB).ByEquipment(ctx, id); err != nil {
		return EquipmentDetail{}, err
	}
	if d.Trail, err = (&AuditService{Repo: repos.NewAuditRepo(s.DB)}).Trail(ctx, domain.EntityEquipment, id); err != nil {
		return EquipmentDetail{}, err
	}
	return d, nil
}

func (s *EquipmentService) List(ctx context.Context, f repos.Filter) ([]domain.Equipment, repos.Page, error) {
	return repos.NewEquipmentRepo(s.DB).List(ctx, f)
}

// Active lists assignable equipment.
func (s *EquipmentService) Active(ctx context.Context) ([]domain.Equipment, error) {
	return repos.NewEquipmentRepo(s.DB).Active(ctx)
}

func (s *EquipmentService) normalize(ctx context.Context, in *EquipmentInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.State = strings.TrimSpace(in.State)
	if err := check(*in); err != nil {
		return err
	}
	ref, ok := validate.Reference(in.Reference)
	if !ok {
		return invalid("reference", "reference may only contain letters, digits and . _ / -")
	}
	in.Reference = ref
	c, err := repos.NewCategoryRepo(s.DB).Get(ctx, in.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid("category_id", "category does not exist")
	}
	if err != nil {
		return err
	}
	if c.IsArchived() {
		return invalid("category_id", "category is archived")
	}
	return nil
}

func (s *EquipmentService) Create(ctx context.Context, actor int64, in EquipmentInput) (e domain.Equipment, err error) {
	defer func() { s.observe("equipment.create", err) }()
	if err := s.normalize(ctx, &in); err != nil {
		return domain.Equipment{}, err
	}
	e = domain.Equipment{
		Name:          in.Name,
		Reference:     in.Reference,
		CategoryID:    in.CategoryID,
		State:         domain.EquipmentState(in.State),
		StockQuantity: in.StockQuantity,
	}
	if err := repos.NewEquipmentRepo(s.DB).Insert(ctx, &e); err != nil {
		if repos.IsUniqueViolation(err) {
			return domain.Equipment{}, invalid("reference", "reference already in use")
		}
		return domain.Equipment{}, err
	}
	s.record(ctx, actor, domain.ActionCreate, domain.EntityEquipment, e.ID)
	return e, nil
}

// Update saves the descriptive fields. StockQuantity in the input is ignored:
// stock only moves through assignments and adjustments.
func (s *EquipmentService) Update(ctx context.Context, actor, id int64, in EquipmentInput) (err error) {
	defer func() { s.observe("equipment.update", err) }()
	repo := repos.NewEquipmentRepo(s.DB)
	cur, err := repo.Get(ctx, id)
	if err != nil {
		return lookup("equipment", err)
	}
	in.StockQuantity = cur.StockQuantity
	if err := s.normalize(ctx, &in); err != nil {
		return err
	}
	cur.Name, cur.Reference, cur.CategoryID, cur.State = in.Name, in.Reference, in.CategoryID, domain.EquipmentState(in.State)
	if err := repo.Update(ctx, cur); err != nil {
		if repos.IsUniqueViolation(err) {
			return invalid("reference", "reference already in use")
		}
		return err
	}
	s.record(ctx, actor, domain.ActionUpdate, domain.EntityEquipment, id)
	return nil
}

// Adjust corrects the stock counter outside any assignment and records an
// adjustment movement.
func (s *EquipmentService) Adjust(ctx context.Context, actor, id int64, in AdjustInput) (err error) {
	defer func() { s.observe("equipment.adjust", err) }()
	if err := check(in); err != nil {
		return err
	}
	dir := domain.Direction(in.Direction)

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		repo := repos.NewEquipmentRepo(tx)
		e, err := repo.Get(ctx, id)
		if err != nil {
			return lookup("equipment", err)
		}
		if e.IsArchived() {
			return ErrArchivedReference
		}
		if dir == domain.Decrease {
			err = guard(repo.TakeStock(ctx, id, in.Quantity), ErrInsufficientStock)
		} else {
			err = repo.PutStock(ctx, id, in.Quantity)
		}
		if err != nil {
			return err
		}
		return repos.NewMovementRepo(tx).Append(ctx, &domain.Movement{
			EquipmentID: id,
			Type:        domain.MovementAdjustment,
			Direction:   &dir,
			Quantity:    in.Quantity,
			OccurredAt:  s.Now(),
			PerformedBy: actorRef(actor),
		})
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionAdjust, domain.EntityEquipment, id)
	return nil
}

func (s *EquipmentService) SoftDelete(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("equipment.soft_delete", err) }()
	return s.setArchived(ctx, actor, domain.EntityEquipment, id, true, s.load(id), s.save(id))
}

func (s *EquipmentService) Restore(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("equipment.restore", err) }()
	return s.setArchived(ctx, actor, domain.EntityEquipment, id, false, s.load(id), s.save(id))
}

func (s *EquipmentService) load(id int64) func(context.Context, *sqlx.Tx) (domain.Archivable, error) {
	return func(ctx context.Context, tx *sqlx.Tx) (domain.Archivable, error) {
		e, err := repos.NewEquipmentRepo(tx).Get(ctx, id)
		if err != nil {
			return nil, lookup("equipment", err)
		}
		return &e, nil
	}
}

func (s *EquipmentService) save(id int64) func(context.Context, *sqlx.Tx, *time.Time) error {
	return func(ctx context.Context, tx *sqlx.Tx, at *time.Time) error {
		return repos.NewEquipmentRepo(tx).SetDeletedAt(ctx, id, at)
	}
}
