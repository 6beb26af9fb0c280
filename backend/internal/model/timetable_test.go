package model

import (
	"testing"
	"time"
)

func TestIsWeekday(t *testing.T) {
	for _, d := range Weekdays {
		if !IsWeekday(d) {
			t.Errorf("%s 应为可识别的星期", d)
		}
	}
	for _, d := range []string{"Sunday", "monday", "", "Mon"} {
		if IsWeekday(d) {
			t.Errorf("%q 不应为可识别的星期", d)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
		ok   bool
	}{
		{time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), "Monday", true},
		{time.Date(2025, 4, 12, 23, 59, 0, 0, time.UTC), "Saturday", true},
		{time.Date(2025, 4, 13, 0, 0, 0, 0, time.UTC), "", false},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "Thursday", true},
	}
	for _, tt := range tests {
		got, ok := WeekdayOf(tt.date)
		if got != tt.want || ok != tt.ok {
			t.Errorf("WeekdayOf(%s) = (%q, %v), 期望 (%q, %v)", tt.date.Format("2006-01-02"), got, ok, tt.want, tt.ok)
		}
	}
}

func TestWeekDays_Normalize(t *testing.T) {
	src := WeekDays{"Monday": {"Math", "Math"}}
	got := src.Normalize()

	if len(got) != len(Weekdays) {
		t.Fatalf("期望 %d 天, 实际 %d", len(Weekdays), len(got))
	}
	for _, d := range Weekdays {
		if got[d] == nil {
			t.Errorf("%s 不应为 nil", d)
		}
	}
	if len(got["Monday"]) != 2 {
		t.Errorf("Monday 期望保留重复项, 实际 %v", got["Monday"])
	}

	// 副本与原始数据互不影响
	got["Monday"][0] = "Physics"
	if src["Monday"][0] != "Math" {
		t.Error("Normalize 应返回深拷贝")
	}
}

func TestEmptyTimetable(t *testing.T) {
	tt := EmptyTimetable("owner-1")
	days := tt.DayMap()
	for _, d := range Weekdays {
		if len(days[d]) != 0 {
			t.Errorf("%s 期望为空, 实际 %v", d, days[d])
		}
	}
	if tt.Version != 0 {
		t.Errorf("未持久化课表 Version 期望 0, 实际 %d", tt.Version)
	}
}
