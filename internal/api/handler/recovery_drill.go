package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/drtrack/internal/api/middleware"
	"github.com/edvin/drtrack/internal/api/request"
	"github.com/edvin/drtrack/internal/api/response"
	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/model"
)

// RecoveryDrills is the service surface the drill handler needs.
type RecoveryDrills interface {
	Schedule(ctx context.Context, in core.ScheduleRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error)
	Start(ctx context.Context, ref string, in core.StartRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error)
	Complete(ctx context.Context, ref string, in core.CompleteRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error)
	Fail(ctx context.Context, ref string, in core.FailRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error)
	Cancel(ctx context.Context, ref string, in core.CancelRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error)
	Get(ctx context.Context, ref string) (*model.RecoveryDrillView, error)
	List(ctx context.Context, f core.DrillFilter) ([]model.RecoveryDrillView, error)
}

type RecoveryDrill struct {
	svc RecoveryDrills
}

func NewRecoveryDrill(svc RecoveryDrills) *RecoveryDrill {
	return &RecoveryDrill{svc: svc}
}

func (h *RecoveryDrill) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParseListParams(r)
	drills, err := h.svc.List(r.Context(), core.DrillFilter{
		Environment: p.Environment,
		Status:      p.Status,
		Scenario:    p.Scenario,
		Limit:       p.Limit,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteList(w, drills, len(drills))
}

func (h *RecoveryDrill) Schedule(w http.ResponseWriter, r *http.Request) {
	var req request.ScheduleRecoveryDrill
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	drill, err := h.svc.Schedule(r.Context(), core.ScheduleRecoveryDrillInput{
		DrillKey:    req.DrillKey,
		Name:        req.Name,
		Scenario:    req.Scenario,
		Status:      req.Status,
		Environment: req.Environment,
		Region:      req.Region,
		RTOMinutes:  req.RTOMinutes.IntPtr(),
		RPOMinutes:  req.RPOMinutes.Ptr(),
		StartedAt:   req.StartedAt,
		Summary:     req.Summary,
		IssuesFound: req.IssuesFound,
		EvidenceURI: req.EvidenceURI,
		Metadata:    req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, drill)
}

func (h *RecoveryDrill) Get(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	drill, err := h.svc.Get(r.Context(), ref)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, drill)
}

func (h *RecoveryDrill) Start(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.StartRecoveryDrill
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	drill, err := h.svc.Start(r.Context(), ref, core.StartRecoveryDrillInput{
		StartedAt:        req.StartedAt,
		RestoreStartedAt: req.RestoreStartedAt,
		Metadata:         req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, drill)
}

func (h *RecoveryDrill) Complete(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CompleteRecoveryDrill
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := drillOutcomeInput(req.DrillOutcome)
	in.Status = req.Status
	drill, err := h.svc.Complete(r.Context(), ref, in, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, drill)
}

func (h *RecoveryDrill) Fail(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.FailRecoveryDrill
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	drill, err := h.svc.Fail(r.Context(), ref, core.FailRecoveryDrillInput{
		CompleteRecoveryDrillInput: drillOutcomeInput(req.DrillOutcome),
		FailureReason:              req.FailureReason,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, drill)
}

func (h *RecoveryDrill) Cancel(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CancelRecoveryDrill
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	drill, err := h.svc.Cancel(r.Context(), ref, core.CancelRecoveryDrillInput{
		Reason:   req.Reason,
		Metadata: req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, drill)
}

func drillOutcomeInput(o request.DrillOutcome) core.CompleteRecoveryDrillInput {
	return core.CompleteRecoveryDrillInput{
		CompletedAt:        o.CompletedAt,
		VerifiedAt:         o.VerifiedAt,
		RestoreStartedAt:   o.RestoreStartedAt,
		RestoreCompletedAt: o.RestoreCompletedAt,
		RestoreDurationMs:  o.RestoreDurationMs.Int64Ptr(),
		RTOMinutes:         o.RTOMinutes.IntPtr(),
		RPOMinutes:         o.RPOMinutes.Ptr(),
		DataLossSeconds:    o.DataLossSeconds.Int64Ptr(),
		Summary:            o.Summary,
		IssuesFound:        o.IssuesFound,
		EvidenceURI:        o.EvidenceURI,
		Metadata:           o.Metadata,
	}
}
