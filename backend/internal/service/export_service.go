package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
	pkgerrors "github.com/raghava-0650/Attendeese/backend/pkg/errors"
	"github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	attendanceSheet = "Attendance"
	timetableSheet  = "Timetable"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 工作簿包含两个 Sheet：
//   - Attendance：每科一行（出勤、缺勤、总课次、课时、出勤率、状态），末行为按课时加权的汇总
//   - Timetable：Monday ~ Saturday 各一列，列内按课表顺序列出科目
type ExportService interface {
	// ExportAttendance 导出当前用户的出勤报表
	ExportAttendance(ctx context.Context, ownerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance 导出出勤报表
// ═══════════════════════════════════════════════════════════
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportAttendance(ctx context.Context, ownerID string) (*bytes.Buffer, string, error) {
	log := logger.FromContext(ctx, s.logger)

	// 1. 查询科目
	subjects, err := s.repo.Subject.ListByOwner(ctx, ownerID, repository.SubjectFilter{Sort: repository.SortNameAsc})
	if err != nil {
		log.Error("查询科目失败", zap.Error(err))
		return nil, "", pkgerrors.Storage(err)
	}

	// 2. 查询课表（不存在时按空课表导出）
	days := model.EmptyTimetable(ownerID).DayMap()
	t, err := s.repo.Timetable.Get(ctx, ownerID)
	switch {
	case err == nil:
		days = t.DayMap()
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Error("查询课表失败", zap.Error(err))
		return nil, "", pkgerrors.Storage(err)
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		log.Error("初始化 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if _, err := f.NewSheet(timetableSheet); err != nil {
		log.Error("初始化 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeAttendanceSheet(f, subjects, headerStyle)
	writeTimetableSheet(f, days, headerStyle)
	f.SetActiveSheet(0)

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		log.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, "attendance_report.xlsx", nil
}

func writeAttendanceSheet(f *excelize.File, subjects []model.Subject, headerStyle int) {
	headers := []string{"Subject", "Attended", "Absent", "Total", "Hours/Class", "Attendance %", "Status", "Note"}
	for i, h := range headers {
		f.SetCellValue(attendanceSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(attendanceSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(attendanceSheet, "A", "A", 24)
	f.SetColWidth(attendanceSheet, "B", "G", 13)
	f.SetColWidth(attendanceSheet, "H", "H", 30)

	row := 2
	for _, sub := range subjects {
		pct := Percentage(sub)
		f.SetCellValue(attendanceSheet, cell("A", row), sub.Name)
		f.SetCellValue(attendanceSheet, cell("B", row), sub.AttendedCount)
		f.SetCellValue(attendanceSheet, cell("C", row), sub.AbsentCount)
		f.SetCellValue(attendanceSheet, cell("D", row), sub.TotalClasses())
		f.SetCellValue(attendanceSheet, cell("E", row), sub.HourDuration)
		f.SetCellValue(attendanceSheet, cell("F", row), pct)
		f.SetCellValue(attendanceSheet, cell("G", row), Status(pct))
		f.SetCellValue(attendanceSheet, cell("H", row), sub.Note)
		row++
	}

	// 汇总行
	attended, total := HourTotals(subjects)
	pct := AggregatePercentage(subjects)
	f.SetCellValue(attendanceSheet, cell("A", row), "Total (hours)")
	f.SetCellValue(attendanceSheet, cell("B", row), attended)
	f.SetCellValue(attendanceSheet, cell("C", row), total-attended)
	f.SetCellValue(attendanceSheet, cell("D", row), total)
	f.SetCellValue(attendanceSheet, cell("F", row), pct)
	f.SetCellValue(attendanceSheet, cell("G", row), Status(pct))
}

func writeTimetableSheet(f *excelize.File, days model.WeekDays, headerStyle int) {
	for i, day := range model.Weekdays {
		col := colName(i)
		f.SetCellValue(timetableSheet, cell(col, 1), day)
		f.SetColWidth(timetableSheet, col, col, 18)
		for j, name := range days[day] {
			f.SetCellValue(timetableSheet, cell(col, j+2), name)
		}
	}
	f.SetCellStyle(timetableSheet, "A1", cell(colName(len(model.Weekdays)-1), 1), headerStyle)
}

// ── 辅助函数 ──

// colName 0 起始的列序号 → 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
