package model

// Subject 科目表，对应 subjects
//
// 出勤/缺勤计数只通过原子增量或显式修正写入，百分比不落库。
type Subject struct {
	ID            string  `gorm:"type:uuid;primaryKey"              json:"id"`
	OwnerID       string  `gorm:"type:varchar(128);not null;index"  json:"ownerId"`
	Name          string  `gorm:"type:varchar(200);not null"        json:"name"`
	AttendedCount int     `gorm:"not null"                          json:"attendedCount"`
	AbsentCount   int     `gorm:"not null"                          json:"absentCount"`
	HourDuration  float64 `gorm:"type:double precision;not null"    json:"hourDuration"`
	Note          string  `gorm:"type:text;not null"                json:"note"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// TotalClasses 总课次 = 出勤 + 缺勤
func (s Subject) TotalClasses() int {
	return s.AttendedCount + s.AbsentCount
}

// DefaultHourDuration 未指定课时时长时的默认值
const DefaultHourDuration = 1.0

// MaxHourDuration 单次课时时长上限（小时）
const MaxHourDuration = 24.0

// MaxCount 出勤/缺勤计数上限，与 INTEGER 列一致
const MaxCount = 2147483647
