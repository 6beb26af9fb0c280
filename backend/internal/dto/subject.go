package dto

// ── 科目模块 DTO ──

// CreateSubjectRequest 创建科目请求
// 计数与课时缺省时分别为 0 和 1；计数上限与 INTEGER 列一致，课时不超过 24 小时
type CreateSubjectRequest struct {
	Name         string   `json:"name"         binding:"required,notblank,max=200"`
	Attended     *int     `json:"attended"     binding:"omitempty,min=0,max=2147483647"`
	Absent       *int     `json:"absent"       binding:"omitempty,min=0,max=2147483647"`
	HourDuration *float64 `json:"hourDuration" binding:"omitempty,gt=0,lte=24"`
	Note         *string  `json:"note"`
}

// UpdateSubjectRequest 修正科目计数或备注（绝对值覆盖）
type UpdateSubjectRequest struct {
	AttendedCount *int    `json:"attendedCount" binding:"omitempty,min=0,max=2147483647"`
	AbsentCount   *int    `json:"absentCount"   binding:"omitempty,min=0,max=2147483647"`
	Note          *string `json:"note"`
}

// AttendanceActionRequest 出勤快捷操作
type AttendanceActionRequest struct {
	Action string `json:"action" binding:"required,attendance_action"`
}

// SubjectListRequest 科目列表查询参数
type SubjectListRequest struct {
	Search string `form:"search" binding:"omitempty,max=200"`
	Sort   string `form:"sort"   binding:"omitempty,oneof=nameAsc nameDesc attendanceAsc attendanceDesc"`
}

// SubjectResponse 科目信息响应（含派生字段）
type SubjectResponse struct {
	ID                   string  `json:"id"`
	OwnerID              string  `json:"ownerId"`
	Name                 string  `json:"name"`
	AttendedCount        int     `json:"attendedCount"`
	AbsentCount          int     `json:"absentCount"`
	HourDuration         float64 `json:"hourDuration"`
	Note                 string  `json:"note"`
	TotalClasses         int     `json:"totalClasses"`
	AttendancePercentage float64 `json:"attendancePercentage"`
	Status               string  `json:"status"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

// AttendanceSummaryResponse 用户出勤汇总
type AttendanceSummaryResponse struct {
	SubjectCount        int     `json:"subjectCount"`
	AttendedHours       float64 `json:"attendedHours"`
	TotalHours          float64 `json:"totalHours"`
	AggregatePercentage float64 `json:"aggregatePercentage"`
	Status              string  `json:"status"`
}
