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

// BackupSnapshots is the service surface the snapshot handler needs.
type BackupSnapshots interface {
	Schedule(ctx context.Context, in core.ScheduleBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error)
	MarkRunning(ctx context.Context, ref string, ac model.AuditContext) (*model.BackupSnapshotView, error)
	Complete(ctx context.Context, ref string, in core.CompleteBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error)
	Fail(ctx context.Context, ref string, in core.FailBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error)
	Verify(ctx context.Context, ref string, in core.VerifyBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error)
	Get(ctx context.Context, ref string) (*model.BackupSnapshotView, error)
	List(ctx context.Context, f core.SnapshotFilter) ([]model.BackupSnapshotView, error)
}

type BackupSnapshot struct {
	svc BackupSnapshots
}

func NewBackupSnapshot(svc BackupSnapshots) *BackupSnapshot {
	return &BackupSnapshot{svc: svc}
}

func (h *BackupSnapshot) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParseListParams(r)
	snapshots, err := h.svc.List(r.Context(), core.SnapshotFilter{
		Environment:        p.Environment,
		Status:             p.Status,
		VerificationStatus: p.VerificationStatus,
		Source:             p.Source,
		Limit:              p.Limit,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteList(w, snapshots, len(snapshots))
}

func (h *BackupSnapshot) Schedule(w http.ResponseWriter, r *http.Request) {
	var req request.ScheduleBackupSnapshot
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.Schedule(r.Context(), core.ScheduleBackupSnapshotInput{
		SnapshotKey:        req.SnapshotKey,
		BackupType:         req.BackupType,
		Source:             req.Source,
		Environment:        req.Environment,
		Region:             req.Region,
		Status:             req.Status,
		VerificationStatus: req.VerificationStatus,
		StorageLocationKey: req.StorageLocationKey,
		StorageClass:       req.StorageClass,
		StorageURI:         req.StorageURI,
		Checksum:           req.Checksum,
		ChecksumAlgorithm:  req.ChecksumAlgorithm,
		SizeBytes:          req.SizeBytes.Int64Ptr(),
		RetentionDays:      req.RetentionDays.IntPtr(),
		StartedAt:          req.StartedAt,
		Notes:              req.Notes,
		DatasetScope:       req.DatasetScope,
		Metadata:           req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, snapshot)
}

func (h *BackupSnapshot) Get(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.Get(r.Context(), ref)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *BackupSnapshot) MarkRunning(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.MarkRunning(r.Context(), ref, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *BackupSnapshot) Complete(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CompleteBackupSnapshot
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.Complete(r.Context(), ref, core.CompleteBackupSnapshotInput{
		CompletedAt:        req.CompletedAt,
		VerificationStatus: req.VerificationStatus,
		Status:             req.Status,
		RetentionDays:      req.RetentionDays.IntPtr(),
		SizeBytes:          req.SizeBytes.Int64Ptr(),
		Checksum:           req.Checksum,
		ChecksumAlgorithm:  req.ChecksumAlgorithm,
		StorageURI:         req.StorageURI,
		StorageClass:       req.StorageClass,
		StorageLocationKey: req.StorageLocationKey,
		Notes:              req.Notes,
		FailureReason:      req.FailureReason,
		Metadata:           req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *BackupSnapshot) Fail(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.FailBackupSnapshot
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.Fail(r.Context(), ref, core.FailBackupSnapshotInput{
		CompletedAt:        req.CompletedAt,
		VerificationStatus: req.VerificationStatus,
		FailureReason:      req.FailureReason,
		Notes:              req.Notes,
		Metadata:           req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *BackupSnapshot) Verify(w http.ResponseWriter, r *http.Request) {
	ref, err := request.RequireRef(chi.URLParam(r, "ref"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.VerifyBackupSnapshot
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.svc.Verify(r.Context(), ref, core.VerifyBackupSnapshotInput{
		VerificationStatus: req.VerificationStatus,
		Status:             req.Status,
		RetentionDays:      req.RetentionDays.IntPtr(),
		FailureReason:      req.FailureReason,
		Notes:              req.Notes,
		Metadata:           req.Metadata,
	}, mw.AuditContext(r))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, snapshot)
}
