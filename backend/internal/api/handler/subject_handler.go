package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/raghava-0650/Attendeese/backend/internal/dto"
	"github.com/raghava-0650/Attendeese/backend/internal/service"
	"github.com/raghava-0650/Attendeese/backend/pkg/response"
)

// SubjectHandler 科目模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// ListSubjects 获取当前用户的科目列表
// GET /api/v1/subjects?search=&sort=
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subjects, err := h.subjectSvc.List(c.Request.Context(), ownerID, &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// GetSummary 出勤汇总
// GET /api/v1/subjects/summary
func (h *SubjectHandler) GetSummary(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.subjectSvc.Summary(c.Request.Context(), ownerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, summary)
}

// GetSubject 获取科目详情
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	subject, err := h.subjectSvc.GetByID(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// CreateSubject 创建科目
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subject, err := h.subjectSvc.Create(c.Request.Context(), ownerID, &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.Created(c, subject)
}

// UpdateSubject 修正出勤/缺勤次数或备注
// PATCH /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subject, err := h.subjectSvc.Update(c.Request.Context(), ownerID, c.Param("id"), &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// DeleteSubject 删除科目
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, nil)
}

// RecordAttendance 出勤快捷操作
// POST /api/v1/subjects/:id/attendance
func (h *SubjectHandler) RecordAttendance(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AttendanceActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subject, err := h.subjectSvc.ApplyAction(c.Request.Context(), ownerID, c.Param("id"), req.Action)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrSubjectNameRequired),
		errors.Is(err, service.ErrSubjectNameTooLong):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrSubjectNegativeCount),
		errors.Is(err, service.ErrSubjectCountTooLarge):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrSubjectInvalidDuration):
		response.BadRequest(c, 12004, err.Error())
	case errors.Is(err, service.ErrSubjectInvalidAction):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrSubjectInvalidSort):
		response.BadRequest(c, 12006, err.Error())
	case errors.Is(err, service.ErrSubjectCountUnderflow):
		response.Conflict(c, 12007, err.Error())
	case errors.Is(err, service.ErrSubjectCountOverflow):
		response.Conflict(c, 12008, err.Error())
	default:
		response.FromKind(c, err)
	}
}
