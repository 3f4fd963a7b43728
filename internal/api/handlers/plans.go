package handlers

import (
	"net/http"
	"strconv"
	"time"
	"vrp-route-service/internal/api/dto"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/services"
	"vrp-route-service/internal/vrp"
)

type PlanHandler struct {
	Planner *services.Planner
}

// Create plans routes for all pending orders and stores the result.
// An infeasible fleet is answered with 422 and the stored plan.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	planReq, err := req.Normalize()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	depart := time.Now().UTC()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	bundle, err := h.Planner.PlanDeliveries(r.Context(), planReq, depart)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	status := http.StatusCreated
	if bundle.Status == vrp.StatusInfeasible.String() {
		status = apperr.StatusFor(apperr.CodeInfeasible)
	}
	writeJSON(w, r, status, bundle)
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	plans, err := h.Planner.ListPlans(r.Context(), limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	res := dto.ListPlansResponse{Plans: make([]dto.PlanSummary, 0, len(plans))}
	for _, p := range plans {
		res.Plans = append(res.Plans, dto.PlanSummary{
			ID:              p.ID,
			CreatedAt:       p.CreatedAt,
			Status:          p.Status,
			Objective:       p.Objective,
			Stops:           max(len(p.Labels)-1, 0),
			Unserved:        len(p.Unserved),
			TotalDistanceKm: p.TotalDistanceKm,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Planner.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, plan)
}
