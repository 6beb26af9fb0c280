package dto

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReplaceTimetableRequest_DecodeDays(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		wantLen int
	}{
		{"对象", `{"Monday":["Math","Math"],"Friday":[]}`, nil, 2},
		{"空对象", ` {} `, nil, 0},
		{"数组", `["Monday"]`, ErrDaysNotObject, 0},
		{"字符串", `"Monday"`, ErrDaysNotObject, 0},
		{"null", `null`, ErrDaysNotObject, 0},
		{"值不是数组", `{"Monday":"Math"}`, ErrDaysInvalid, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ReplaceTimetableRequest{Days: json.RawMessage(tt.raw)}
			days, err := req.DecodeDays()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，实际 %v", tt.wantErr, err)
			}
			if err == nil && len(days) != tt.wantLen {
				t.Errorf("期望 %d 个键，实际 %d", tt.wantLen, len(days))
			}
		})
	}
}
