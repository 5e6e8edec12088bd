package domain

import "time"

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Archive
}

// EquipmentState is the physical condition of an equipment item.
type EquipmentState string

const (
	StateNew     EquipmentState = "new"
	StateUsed    EquipmentState = "used"
	StateDamaged EquipmentState = "damaged"
)

var EquipmentStates = []EquipmentState{StateNew, StateUsed, StateDamaged}

func (s EquipmentState) Valid() bool {
	switch s {
	case StateNew, StateUsed, StateDamaged:
		return true
	}
	return false
}

type Equipment struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Reference     string         `db:"reference"`
	CategoryID    int64          `db:"category_id"`
	CategoryName  string         `db:"category_name"`
	State         EquipmentState `db:"state"`
	StockQuantity int            `db:"stock_quantity"`
	Archive
}

type Store struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Address     string     `db:"address"`
	Manager     string     `db:"manager"`
	Region      string     `db:"region"`       // regional operating company (SR)
	CodeFR      string     `db:"code_fr"`      // site code
	Status      string     `db:"status"`       // open | closed
	ProjectType string     `db:"project_type"` // creation | reconstruction
	OpenedOn    *time.Time `db:"opened_on"`
	Archive
}

var (
	StoreStatuses     = []string{"open", "closed"}
	StoreProjectTypes = []string{"creation", "reconstruction"}
)

// Assignment is a checkout of some quantity of one equipment item to one store.
type Assignment struct {
	ID               int64      `db:"id"`
	EquipmentID      int64      `db:"equipment_id"`
	StoreID          int64      `db:"store_id"`
	AssignedAt       time.Time  `db:"assigned_at"`
	Quantity         int        `db:"quantity"`
	ReturnedQuantity int        `db:"returned_quantity"`
	ReturnedAt       *time.Time `db:"returned_at"`
	CreatedBy        *int64     `db:"created_by"`
	ReturnedBy       *int64     `db:"returned_by"`
	Archive

	// joined for display
	EquipmentName      string `db:"equipment_name"`
	EquipmentReference string `db:"equipment_reference"`
	StoreName          string `db:"store_name"`
	CreatedByName      string `db:"created_by_name"`
	ReturnedByName     string `db:"returned_by_name"`
}

// Outstanding is the quantity still checked out.
func (a Assignment) Outstanding() int { return a.Quantity - a.ReturnedQuantity }

// Closed reports whether everything has been returned.
func (a Assignment) Closed() bool { return a.ReturnedQuantity >= a.Quantity }

// MovementType tags a stock-affecting ledger entry.
type MovementType string

const (
	MovementAddition   MovementType = "addition"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementAddition, MovementReturn, MovementAdjustment:
		return true
	}
	return false
}

func (t MovementType) Label() string {
	switch t {
	case MovementAddition:
		return "Assigned out"
	case MovementReturn:
		return "Returned"
	case MovementAdjustment:
		return "Adjustment"
	}
	return string(t)
}

// Direction of a stock adjustment.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

func (d Direction) Valid() bool { return d == Increase || d == Decrease }

type Movement struct {
	ID           int64        `db:"id"`
	AssignmentID *int64       `db:"assignment_id"`
	EquipmentID  int64        `db:"equipment_id"`
	StoreID      *int64       `db:"store_id"`
	Type         MovementType `db:"type"`
	Direction    *Direction   `db:"direction"` // adjustments only
	Quantity     int          `db:"quantity"`
	OccurredAt   time.Time    `db:"occurred_at"`
	PerformedBy  *int64       `db:"performed_by"`

	EquipmentName   string `db:"equipment_name"`
	StoreName       string `db:"store_name"`
	PerformedByName string `db:"performed_by_name"`
}

// Signed is the effect of the movement on the central stock counter.
func (m Movement) Signed() int {
	switch m.Type {
	case MovementAddition:
		return -m.Quantity
	case MovementReturn:
		return m.Quantity
	case MovementAdjustment:
		if m.Direction != nil && *m.Direction == Decrease {
			return -m.Quantity
		}
		return m.Quantity
	}
	return 0
}

// Entity names recorded in the audit log.
const (
	EntityEquipment  = "Equipment"
	EntityStore      = "Store"
	EntityCategory   = "Category"
	EntityAssignment = "Assignment"
	EntityUser       = "User"
)

// Audit actions.
const (
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionSoftDelete     = "soft_delete"
	ActionRestore        = "restore"
	ActionReturn         = "return"
	ActionAdjust         = "adjust"
	ActionActivate       = "activate"
	ActionDeactivate     = "deactivate"
	ActionPasswordChange = "password_change"
)

type Audit struct {
	ID          int64     `db:"id"`
	UserID      *int64    `db:"user_id"`
	Action      string    `db:"action"`
	EntityClass string    `db:"entity_class"`
	EntityID    int64     `db:"entity_id"`
	OccurredAt  time.Time `db:"occurred_at"`

	UserName string `db:"user_name"`
}
