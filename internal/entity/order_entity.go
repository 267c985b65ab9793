package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusNew       = "new"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

var orderStatusRank = map[string]int{
	OrderStatusNew:       0,
	OrderStatusPreparing: 1,
	OrderStatusReady:     2,
	OrderStatusCompleted: 3,
}

// IsValidOrderStatus reports whether s is a known kitchen status.
func IsValidOrderStatus(s string) bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransition allows kitchen statuses to move forward only.
func CanTransition(from, to string) bool {
	f, okFrom := orderStatusRank[from]
	t, okTo := orderStatusRank[to]
	return okFrom && okTo && t > f
}

type OrderLine struct {
	Item        string   `json:"item"`
	Extras      []string `json:"extras"`
	Base        int64    `json:"base"`
	ExtrasTotal int64    `json:"extras_total"`
	Subtotal    int64    `json:"subtotal"`
}

type Order struct {
	Id              uuid.UUID
	CallId          string
	Mode            string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Lines           []OrderLine
	TotalMinor      int64
	Summary         string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
