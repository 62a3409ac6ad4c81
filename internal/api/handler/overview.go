package handler

import (
	"context"
	"net/http"

	"github.com/edvin/drtrack/internal/api/response"
	"github.com/edvin/drtrack/internal/core"
)

// OverviewSource builds the dashboard overview.
type OverviewSource interface {
	Get(ctx context.Context) (*core.Overview, error)
}

type Overview struct {
	svc OverviewSource
}

func NewOverview(svc OverviewSource) *Overview {
	return &Overview{svc: svc}
}

func (h *Overview) Get(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Get(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, overview)
}
