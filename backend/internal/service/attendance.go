package service

import (
	"math"
	"math/big"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
)

// ── 出勤率计算（纯函数） ──

// 出勤状态分档
const (
	StatusSafe    = "safe"
	StatusWarning = "warning"
	StatusDanger  = "danger"

	dangerBelow  = 75.0
	warningBelow = 90.0
)

var (
	ratHalf    = big.NewRat(1, 2)
	ratPercent = big.NewRat(10000, 1) // 百分比 × 100，保留两位小数
)

// roundRatioHalfUp 按精确有理数计算 num/den 的百分比，两位小数 0.5 进位
// num、den 均非负且 den > 0
func roundRatioHalfUp(num, den *big.Rat) float64 {
	q := new(big.Rat).Quo(num, den)
	q.Mul(q, ratPercent)
	q.Add(q, ratHalf)
	k := new(big.Int).Quo(q.Num(), q.Denom())
	return float64(k.Int64()) / 100
}

// Percentage 单科出勤率（0–100，两位小数）
// 单科内课时时长相互抵消，只由计数决定；总课次为 0 时返回 0
func Percentage(s model.Subject) float64 {
	total := int64(s.AttendedCount) + int64(s.AbsentCount)
	if total <= 0 || s.AttendedCount < 0 || s.AbsentCount < 0 {
		return 0
	}
	// floor(a*10000/n + 1/2) = (a*20000 + n) / 2n
	k := (int64(s.AttendedCount)*20000 + total) / (2 * total)
	return float64(k) / 100
}

// HourTotals 按课时加权的出勤小时与总小时
func HourTotals(subjects []model.Subject) (attended, total float64) {
	for _, s := range subjects {
		attended += float64(s.AttendedCount) * s.HourDuration
		total += float64(s.TotalClasses()) * s.HourDuration
	}
	if !isFinite(attended) || !isFinite(total) {
		return 0, 0
	}
	return attended, total
}

// AggregatePercentage 多科目按课时加权的总出勤率
// 分母为 0 或课时数据非法时返回 0
func AggregatePercentage(subjects []model.Subject) float64 {
	num, den := new(big.Rat), new(big.Rat)
	for _, s := range subjects {
		if !isFinite(s.HourDuration) || s.HourDuration <= 0 {
			continue
		}
		hour := new(big.Rat).SetFloat64(s.HourDuration)
		num.Add(num, new(big.Rat).Mul(hour, new(big.Rat).SetInt64(int64(s.AttendedCount))))
		den.Add(den, new(big.Rat).Mul(hour, new(big.Rat).SetInt64(int64(s.AttendedCount)+int64(s.AbsentCount))))
	}
	if den.Sign() <= 0 || num.Sign() < 0 {
		return 0
	}
	return roundRatioHalfUp(num, den)
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Status 出勤率分档：低于 75 为 danger，低于 90 为 warning
func Status(percentage float64) string {
	switch {
	case percentage < dangerBelow:
		return StatusDanger
	case percentage < warningBelow:
		return StatusWarning
	default:
		return StatusSafe
	}
}
