package dto

import "vrp-route-service/internal/domain"

type OrderResponse struct {
	OrderID     string             `json:"order_id"`
	Destination string             `json:"destination"`
	Demand      int64              `json:"demand"`
	Items       []domain.OrderItem `json:"items"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
