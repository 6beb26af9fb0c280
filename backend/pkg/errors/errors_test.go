package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	storageErr := Storage(errors.New("connection refused"))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", Validation("名称不能为空"), KindValidation},
		{"not found", NotFound("科目不存在"), KindNotFound},
		{"logic", Logic("计数不能为负"), KindLogic},
		{"storage", storageErr, KindStorage},
		{"wrapped", fmt.Errorf("外层: %w", NotFound("科目不存在")), KindNotFound},
		{"unauthenticated", ErrUnauthenticated, KindUnauthenticated},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("%s: KindOf = %q, 期望 %q", tt.name, got, tt.want)
		}
	}
}

func TestSentinelIdentity(t *testing.T) {
	errA := NotFound("科目不存在")
	errB := NotFound("科目不存在")

	if !errors.Is(errA, errA) {
		t.Error("同一哨兵错误应匹配自身")
	}
	if errors.Is(errA, errB) {
		t.Error("不同哨兵错误不应互相匹配")
	}
	if !errors.Is(errA, ErrNotFound) {
		t.Error("哨兵错误应匹配其类别")
	}
	if errors.Is(errA, ErrValidation) {
		t.Error("哨兵错误不应匹配其他类别")
	}
}

func TestStorage_UnwrapAndRetryable(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Storage(cause)

	if !errors.Is(err, cause) {
		t.Error("Storage 错误应保留原始错误")
	}
	if !Retryable(err) {
		t.Error("Storage 错误应可重试")
	}
	if Retryable(Logic("x")) {
		t.Error("Logic 错误不可重试")
	}
}
