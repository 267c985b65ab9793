package mapper

import (
	"encoding/json"
	"time"

	"phone-order-be/internal/entity"
	"phone-order-be/internal/model"

	"gorm.io/datatypes"
)

type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

func (m *OrderMapper) ToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}

	var lines []entity.OrderLine
	if len(o.Lines) > 0 {
		// a malformed column yields an order without lines rather than no order
		_ = json.Unmarshal(o.Lines, &lines)
	}

	var updatedAt *time.Time
	if !o.UpdatedAt.IsZero() {
		t := o.UpdatedAt
		updatedAt = &t
	}

	return &entity.Order{
		Id:              o.Id,
		CallId:          o.CallId,
		Mode:            o.Mode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Lines:           lines,
		TotalMinor:      o.TotalMinor,
		Summary:         o.Summary,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *OrderMapper) ToModel(o *entity.Order) *model.Order {
	if o == nil {
		return nil
	}

	lines := o.Lines
	if lines == nil {
		lines = []entity.OrderLine{}
	}
	raw, _ := json.Marshal(lines)

	var updatedAt time.Time
	if o.UpdatedAt != nil {
		updatedAt = *o.UpdatedAt
	}

	return &model.Order{
		Id:              o.Id,
		CallId:          o.CallId,
		Mode:            o.Mode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Lines:           datatypes.JSON(raw),
		TotalMinor:      o.TotalMinor,
		Summary:         o.Summary,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *OrderMapper) ToEntities(orders []*model.Order) []*entity.Order {
	entities := make([]*entity.Order, len(orders))
	for i, o := range orders {
		entities[i] = m.ToEntity(o)
	}
	return entities
}
