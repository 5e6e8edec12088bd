package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
)

type AssignmentInput struct {
	EquipmentID int64 `form:"equipment_id" validate:"required"`
	StoreID     int64 `form:"store_id" validate:"required"`
	Quantity    int   `form:"quantity" validate:"gt=0"`
}

// EditInput changes an assignment's quantity and destination. The equipment
// item cannot change.
type EditInput struct {
	StoreID  int64 `form:"store_id" validate:"required"`
	Quantity int   `form:"quantity" validate:"gt=0"`
}

// AssignmentService owns the checkout workflow. Every operation keeps the
// equipment stock counter, the assignment quantities and the movement ledger
// consistent inside one transaction, then emits one audit event.
type AssignmentService struct {
	Base
	Now func() time.Time
}

func NewAssignmentService(b Base) *AssignmentService {
	return &AssignmentService{Base: b, Now: now}
}

type AssignmentDetail struct {
	Assignment domain.Assignment
	Movements  []domain.Movement
	Trail      Trail
}

func (s *AssignmentService) Get(ctx context.Context, id int64) (domain.Assignment, error) {
	a, err := repos.NewAssignmentRepo(s.DB).Get(ctx, id)
	return a, lookup("assignment", err)
}

func (s *AssignmentService) Detail(ctx context.Context, id int64) (AssignmentDetail, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return AssignmentDetail{}, err
	}
	d := AssignmentDetail{Assignment: a}
	if d.Movements, err = repos.NewMovementRepo(s.DB).ByAssignment(ctx, id); err != nil {
		return AssignmentDetail{}, err
	}
	if d.Trail, err = (&AuditService{Repo: repos.NewAuditRepo(s.DB)}).Trail(ctx, domain.EntityAssignment, id); err != nil {
		return AssignmentDetail{}, err
	}
	return d, nil
}

func (s *AssignmentService) List(ctx context.Context, f repos.Filter) ([]domain.Assignment, repos.Page, error) {
	return repos.NewAssignmentRepo(s.DB).List(ctx, f)
}

// ForStore returns the store's assignments that still have units out.
func (s *AssignmentService) ForStore(ctx context.Context, storeID int64) ([]domain.Assignment, error) {
	return repos.NewAssignmentRepo(s.DB).ByStore(ctx, storeID, true)
}

// Create checks quantity units of one equipment item out to a store.
func (s *AssignmentService) Create(ctx context.Context, actor int64, in AssignmentInput) (a domain.Assignment, err error) {
	defer func() { s.observe("assignment.create", err) }()
	if err := check(in); err != nil {
		return domain.Assignment{}, err
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		eqRepo := repos.NewEquipmentRepo(tx)
		eq, err := eqRepo.Get(ctx, in.EquipmentID)
		if err != nil {
			return lookup("equipment", err)
		}
		st, err := repos.NewStoreRepo(tx).Get(ctx, in.StoreID)
		if err != nil {
			return lookup("store", err)
		}
		if eq.IsArchived() || st.IsArchived() {
			return ErrArchivedReference
		}
		if err := guard(eqRepo.TakeStock(ctx, eq.ID, in.Quantity), ErrInsufficientStock); err != nil {
			return err
		}

		at := s.Now()
		a = domain.Assignment{
			EquipmentID: eq.ID,
			StoreID:     st.ID,
			AssignedAt:  at,
			Quantity:    in.Quantity,
			CreatedBy:   actorRef(actor),
		}
		if err := repos.NewAssignmentRepo(tx).Insert(ctx, &a); err != nil {
			return err
		}
		return repos.NewMovementRepo(tx).Append(ctx, &domain.Movement{
			AssignmentID: &a.ID,
			EquipmentID:  eq.ID,
			StoreID:      &st.ID,
			Type:         domain.MovementAddition,
			Quantity:     in.Quantity,
			OccurredAt:   at,
			PerformedBy:  actorRef(actor),
		})
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	s.record(ctx, actor, domain.ActionCreate, domain.EntityAssignment, a.ID)
	return a, nil
}

// Edit changes quantity and store. A larger quantity takes the difference
// from stock and a smaller one puts it back; either way one movement
// records the difference.
func (s *AssignmentService) Edit(ctx context.Context, actor, id int64, in EditInput) (err error) {
	defer func() { s.observe("assignment.edit", err) }()
	if err := check(in); err != nil {
		return err
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		asRepo := repos.NewAssignmentRepo(tx)
		eqRepo := repos.NewEquipmentRepo(tx)
		a, err := asRepo.Get(ctx, id)
		if err != nil {
			return lookup("assignment", err)
		}
		eq, err := eqRepo.Get(ctx, a.EquipmentID)
		if err != nil {
			return lookup("equipment", err)
		}
		st, err := repos.NewStoreRepo(tx).Get(ctx, in.StoreID)
		if err != nil {
			return lookup("store", err)
		}
		if eq.IsArchived() || st.IsArchived() {
			return ErrArchivedReference
		}
		if in.Quantity < a.ReturnedQuantity {
			return invalid("quantity", "quantity cannot be lower than the quantity already returned")
		}

		delta := in.Quantity - a.Quantity
		mv := domain.Movement{
			AssignmentID: &a.ID,
			EquipmentID:  eq.ID,
			StoreID:      &st.ID,
			OccurredAt:   s.Now(),
			PerformedBy:  actorRef(actor),
		}
		switch {
		case delta > 0:
			if err := guard(eqRepo.TakeStock(ctx, eq.ID, delta), ErrInsufficientStock); err != nil {
				return err
			}
			mv.Type, mv.Quantity = domain.MovementAddition, delta
		case delta < 0:
			if err := eqRepo.PutStock(ctx, eq.ID, -delta); err != nil {
				return err
			}
			mv.Type, mv.Quantity = domain.MovementReturn, -delta
		}

		if err := guard(asRepo.Reassign(ctx, a.ID, st.ID, in.Quantity), ErrValidation); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return repos.NewMovementRepo(tx).Append(ctx, &mv)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionUpdate, domain.EntityAssignment, id)
	return nil
}

// Return books qty units as back in stock.
func (s *AssignmentService) Return(ctx context.Context, actor, id int64, qty int) (err error) {
	defer func() { s.observe("assignment.return", err) }()

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		asRepo := repos.NewAssignmentRepo(tx)
		a, err := asRepo.Get(ctx, id)
		if err != nil {
			return lookup("assignment", err)
		}
		if qty <= 0 || qty > a.Outstanding() {
			return ErrInvalidReturnQuantity
		}

		at := s.Now()
		if err := guard(asRepo.AddReturned(ctx, a.ID, qty, actorRef(actor), at), ErrInvalidReturnQuantity); err != nil {
			return err
		}
		if err := repos.NewEquipmentRepo(tx).PutStock(ctx, a.EquipmentID, qty); err != nil {
			return err
		}
		return repos.NewMovementRepo(tx).Append(ctx, &domain.Movement{
			AssignmentID: &a.ID,
			EquipmentID:  a.EquipmentID,
			StoreID:      &a.StoreID,
			Type:         domain.MovementReturn,
			Quantity:     qty,
			OccurredAt:   at,
			PerformedBy:  actorRef(actor),
		})
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionReturn, domain.EntityAssignment, id)
	return nil
}

// SoftDelete archives the assignment. Stock is left as is.
func (s *AssignmentService) SoftDelete(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("assignment.soft_delete", err) }()
	return s.setArchived(ctx, actor, domain.EntityAssignment, id, true, s.loadArchivable(id), s.saveArchived(id))
}

func (s *AssignmentService) Restore(ctx context.Context, actor, id int64) (changed bool, err error) {
	defer func() { s.observe("assignment.restore", err) }()
	return s.setArchived(ctx, actor, domain.EntityAssignment, id, false, s.loadArchivable(id), s.saveArchived(id))
}

func (s *AssignmentService) loadArchivable(id int64) func(context.Context, *sqlx.Tx) (domain.Archivable, error) {
	return func(ctx context.Context, tx *sqlx.Tx) (domain.Archivable, error) {
		a, err := repos.NewAssignmentRepo(tx).Get(ctx, id)
		if err != nil {
			return nil, lookup("assignment", err)
		}
		return &a, nil
	}
}

func (s *AssignmentService) saveArchived(id int64) func(context.Context, *sqlx.Tx, *time.Time) error {
	return func(ctx context.Context, tx *sqlx.Tx, at *time.Time) error {
		return repos.NewAssignmentRepo(tx).SetDeletedAt(ctx, id, at)
	}
}
