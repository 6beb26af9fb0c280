package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ── 周课表 DTO ──

var (
	ErrDaysNotObject = errors.New("days 必须是以星期为键的对象")
	ErrDaysInvalid   = errors.New("days 的每个星期必须对应科目名称数组")
)

// ReplaceTimetableRequest 整表覆盖请求
// Days 延迟解码，便于区分「不是对象」与「内容不合法」
type ReplaceTimetableRequest struct {
	Days json.RawMessage `json:"days" binding:"required"`
}

// DecodeDays 将 days 解码为 星期 → 科目名称序列
func (r *ReplaceTimetableRequest) DecodeDays() (map[string][]string, error) {
	raw := bytes.TrimSpace(r.Days)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrDaysNotObject
	}
	var days map[string][]string
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, ErrDaysInvalid
	}
	return days, nil
}

// DayPath 路径中的星期参数
type DayPath struct {
	Day string `uri:"day" binding:"required,weekday"`
}

// DayEntryRequest 单日追加科目
type DayEntryRequest struct {
	Subject string `json:"subject" binding:"required,notblank,max=200"`
}

// TimetableQuery 课表查询参数
type TimetableQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// RemoveDayEntryQuery 单日移除科目参数
type RemoveDayEntryQuery struct {
	Subject string `form:"subject" binding:"required,notblank"`
}

// TimetableResponse 周课表响应（六天齐全）
type TimetableResponse struct {
	OwnerID  string               `json:"ownerId"`
	Days     map[string][]string  `json:"days"`
	Version  int                  `json:"version"`
	Schedule *DaySubjectsResponse `json:"schedule,omitempty"`
}

// DaySubjectsResponse 指定日期的课程
// Weekday 为空表示周日（课表不含周日）
type DaySubjectsResponse struct {
	Date     string   `json:"date"`
	Weekday  string   `json:"weekday,omitempty"`
	Subjects []string `json:"subjects"`
}

// OrphanEntry 课表中找不到对应科目的条目
type OrphanEntry struct {
	Day     string `json:"day"`
	Subject string `json:"subject"`
}

// ReconcileResponse 课表与科目一致性检查结果
type ReconcileResponse struct {
	Orphans   []OrphanEntry      `json:"orphans"`
	Pruned    bool               `json:"pruned"`
	Timetable *TimetableResponse `json:"timetable,omitempty"`
}
