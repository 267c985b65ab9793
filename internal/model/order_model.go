package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Order struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallId          string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Mode            string         `gorm:"type:varchar(16);not null"`
	CustomerName    string         `gorm:"type:varchar(255)"`
	CustomerPhone   string         `gorm:"type:varchar(32)"`
	CustomerAddress string         `gorm:"type:text"`
	Lines           datatypes.JSON `gorm:"type:jsonb;not null"`
	TotalMinor      int64          `gorm:"not null"`
	Summary         string         `gorm:"type:text"`
	Status          string         `gorm:"type:varchar(16);not null;default:'new';index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
