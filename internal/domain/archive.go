package domain

import "time"

// Archivable is implemented by every entity that is soft-deleted through a
// nullable deleted_at column instead of being removed.
type Archivable interface {
	IsArchived() bool
	SoftDelete(at time.Time) bool
	Restore() bool
}

// Archive is embedded by archivable entities.
type Archive struct {
	DeletedAt *time.Time `db:"deleted_at"`
}

func (a Archive) IsArchived() bool { return a.DeletedAt != nil }

// SoftDelete marks the entity archived. It reports false when it already was.
func (a *Archive) SoftDelete(at time.Time) bool {
	if a.DeletedAt != nil {
		return false
	}
	t := at.UTC()
	a.DeletedAt = &t
	return true
}

// Restore clears the archive mark. It reports false when the entity was active.
func (a *Archive) Restore() bool {
	if a.DeletedAt == nil {
		return false
	}
	a.DeletedAt = nil
	return true
}
