package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ByCallID struct {
	CallID string
}

func (s ByCallID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("call_id = ?", s.CallID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
type ForUpdate struct{}

func (ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
