package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
)

type AttendanceHandler interface {
	WorkInfo(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// WorkInfo implements AttendanceHandler.
func (h *attendanceHandlerImpl) WorkInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.attendanceService.GetWorkInfo(r.Context())
	if err != nil {
		slog.Error("GetWorkInfo error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, info)
}

// Refresh implements AttendanceHandler.
func (h *attendanceHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.RefreshWorkInfo(r.Context()); err != nil {
		slog.Info("RefreshWorkInfo not performed", "error", err)
		response.HandleError(w, err)
		return
	}

	info, err := h.attendanceService.GetWorkInfo(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, info)
}

// Monthly implements AttendanceHandler. Data is null when the totals could not be read.
func (h *attendanceHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.attendanceService.GetMonthlyWorkHours(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, monthly)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	response.Result(w, h.attendanceService.ClockIn(r.Context()))
}

// ClockOut implements AttendanceHandler. An empty body uses the saved settings.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockOutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("ClockOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	response.Result(w, h.attendanceService.ClockOut(r.Context(), req))
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	var filter attendance.HistoryFilter

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		filter.Limit = n
	}

	entries, err := h.attendanceService.History(r.Context(), filter)
	if err != nil {
		slog.Error("History error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}
