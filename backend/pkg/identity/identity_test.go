package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raghava-0650/Attendeese/backend/config"
	"github.com/raghava-0650/Attendeese/backend/pkg/jwt"
)

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(&config.AuthConfig{Provider: "jwt", JWTSecret: "0123456789abcdef"})
	if err != nil {
		t.Fatalf("jwt provider 不应失败: %v", err)
	}
	if _, ok := v.(*JWTVerifier); !ok {
		t.Errorf("期望 *JWTVerifier，实际 %T", v)
	}

	v, err = NewVerifier(&config.AuthConfig{Provider: "google", GoogleClientIDs: []string{"cid"}})
	if err != nil {
		t.Fatalf("google provider 不应失败: %v", err)
	}
	if _, ok := v.(*GoogleVerifier); !ok {
		t.Errorf("期望 *GoogleVerifier，实际 %T", v)
	}

	if _, err := NewVerifier(&config.AuthConfig{Provider: "ldap"}); err == nil {
		t.Error("未知 provider 应返回错误")
	}
}

func TestJWTVerifier(t *testing.T) {
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "0123456789abcdef"})
	v := NewJWTVerifier(mgr)

	token, err := mgr.GenerateAccessToken("owner-a", time.Hour)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	owner, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify 失败: %v", err)
	}
	if owner != "owner-a" {
		t.Errorf("期望 owner-a，实际 %s", owner)
	}

	_, err = v.Verify(context.Background(), "garbage")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("无效 token 期望 ErrUnauthenticated，实际: %v", err)
	}
}

func TestGoogleVerifier_RejectsMalformed(t *testing.T) {
	v := NewGoogleVerifier([]string{"client-id"})

	_, err := v.Verify(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("格式错误的 token 期望 ErrUnauthenticated，实际: %v", err)
	}
}
