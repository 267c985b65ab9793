package dto

import (
	"time"

	"github.com/google/uuid"
)

// PlacedOrderMessage travels on the in-process order topic.
type PlacedOrderMessage struct {
	OrderId         uuid.UUID          `json:"order_id"`
	CallId          string             `json:"call_id"`
	Mode            string             `json:"mode"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	Lines           []OrderLineMessage `json:"lines"`
	TotalMinor      int64              `json:"total_minor"`
	Summary         string             `json:"summary"`
	PlacedAt        time.Time          `json:"placed_at"`
}

type OrderLineMessage struct {
	Item        string   `json:"item"`
	Extras      []string `json:"extras"`
	Base        int64    `json:"base"`
	ExtrasTotal int64    `json:"extras_total"`
	Subtotal    int64    `json:"subtotal"`
}

type OrderLineResponse struct {
	Item     string   `json:"item"`
	Extras   []string `json:"extras"`
	Subtotal string   `json:"subtotal"`
}

type OrderResponse struct {
	Id              uuid.UUID           `json:"id"`
	CallId          string              `json:"call_id"`
	Mode            string              `json:"mode"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerAddress string              `json:"customer_address,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
	Total           string              `json:"total"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       *time.Time          `json:"updated_at"`
}

type ListOrdersRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	Status   string `query:"status" validate:"omitempty,oneof=new preparing ready completed"`
}

type ListOrdersResponse struct {
	Items    []OrderResponse `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new preparing ready completed"`
}
