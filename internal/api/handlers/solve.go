package handlers

import (
	"net/http"
	"vrp-route-service/internal/api/dto"
	"vrp-route-service/internal/platform/apperr"
	"vrp-route-service/internal/services"
	"vrp-route-service/internal/vrp"
)

// SolveHandler solves explicit matrix instances without touching storage
// or routing providers.
type SolveHandler struct {
	Defaults services.SolverDefaults
}

func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req dto.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := services.SolveMatrix(r.Context(), h.Defaults, req.ToService())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Status == vrp.StatusInfeasible {
		status = apperr.StatusFor(apperr.CodeInfeasible)
	}
	writeJSON(w, r, status, dto.NewSolveResponse(res))
}
