package handlers

import (
	"net/http"
	"vrp-route-service/internal/api/dto"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/ports"
)

// OrderHandler exposes read-only order retrieval endpoints.
type OrderHandler struct {
	Repo ports.OrderRepository
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.ListPendingOrders(r.Context())
	if err != nil {
		writeAppError(w, r, apperr.Wrap(err, apperr.CodeInternal, "list orders"))
		return
	}

	res := dto.ListOrdersResponse{
		Orders: make([]dto.OrderResponse, 0, len(orders)),
	}
	for _, o := range orders {
		res.Orders = append(res.Orders, dto.OrderResponse{
			OrderID:     o.OrderID,
			Destination: o.Destination,
			Demand:      o.Demand(),
			Items:       o.Items,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
