package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raghava-0650/Attendeese/backend/internal/dto"
	"github.com/raghava-0650/Attendeese/backend/internal/service"
	"github.com/raghava-0650/Attendeese/backend/pkg/response"
)

// TimetableHandler 周课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// GetTimetable 获取周课表
// GET /api/v1/timetable?date=YYYY-MM-DD
// 携带 date 时附带当天的课程
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var q dto.TimetableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	tt, err := h.timetableSvc.Get(ctx, ownerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	// 日程取自同一份课表，避免两次读取之间课表被修改
	if q.Date != "" {
		date, _ := time.Parse("2006-01-02", q.Date)
		tt.Schedule = service.ScheduleFor(tt, date)
	}

	response.OK(c, tt)
}

// ReplaceTimetable 整表覆盖
// PUT /api/v1/timetable
// POST /api/v1/timetable
func (h *TimetableHandler) ReplaceTimetable(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReplaceTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	days, err := req.DecodeDays()
	if err != nil {
		response.BadRequest(c, 13003, err.Error())
		return
	}

	tt, err := h.timetableSvc.Replace(c.Request.Context(), ownerID, days)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, tt)
}

// AddDaySubject 在指定星期末尾追加科目
// POST /api/v1/timetable/days/:day/subjects
func (h *TimetableHandler) AddDaySubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var path dto.DayPath
	if err := c.ShouldBindUri(&path); err != nil {
		h.handleTimetableError(c, service.ErrTimetableInvalidDay)
		return
	}
	var req dto.DayEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tt, err := h.timetableSvc.AddSubjectToDay(c.Request.Context(), ownerID, path.Day, req.Subject)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, tt)
}

// RemoveDaySubject 移除指定星期中第一个同名科目
// DELETE /api/v1/timetable/days/:day/subjects?subject=
func (h *TimetableHandler) RemoveDaySubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var path dto.DayPath
	if err := c.ShouldBindUri(&path); err != nil {
		h.handleTimetableError(c, service.ErrTimetableInvalidDay)
		return
	}
	var q dto.RemoveDayEntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	tt, err := h.timetableSvc.RemoveSubjectFromDay(c.Request.Context(), ownerID, path.Day, q.Subject)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, tt)
}

// GetReconcileReport 列出没有对应科目的课表条目
// GET /api/v1/timetable/reconcile
func (h *TimetableHandler) GetReconcileReport(c *gin.Context) {
	h.reconcile(c, false)
}

// PruneOrphans 清理没有对应科目的课表条目
// POST /api/v1/timetable/reconcile
func (h *TimetableHandler) PruneOrphans(c *gin.Context) {
	h.reconcile(c, true)
}

func (h *TimetableHandler) reconcile(c *gin.Context, prune bool) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.timetableSvc.Reconcile(c.Request.Context(), ownerID, prune)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, report)
}

func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableInvalidDay):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrTimetableSubjectRequired):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrTimetableInvalidDays):
		response.BadRequest(c, 13003, err.Error())
	default:
		response.FromKind(c, err)
	}
}
