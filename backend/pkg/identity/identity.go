package identity

import (
	"context"
	"errors"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"

	"github.com/raghava-0650/Attendeese/backend/config"
	"github.com/raghava-0650/Attendeese/backend/pkg/jwt"
)

// ErrUnauthenticated 令牌缺失、无效或已过期
var ErrUnauthenticated = errors.New("身份校验失败")

// Verifier 外部身份服务的适配接口：校验令牌并返回用户标识
type Verifier interface {
	Verify(ctx context.Context, token string) (ownerID string, err error)
}

// NewVerifier 按配置选择身份校验实现
func NewVerifier(cfg *config.AuthConfig) (Verifier, error) {
	switch cfg.Provider {
	case "jwt":
		return NewJWTVerifier(jwt.NewManager(cfg)), nil
	case "google":
		return NewGoogleVerifier(cfg.GoogleClientIDs), nil
	default:
		return nil, fmt.Errorf("不支持的身份服务: %s", cfg.Provider)
	}
}

// ── HS256 JWT ──

// JWTVerifier 共享密钥签名的访问令牌
type JWTVerifier struct {
	mgr *jwt.Manager
}

// NewJWTVerifier 创建 JWTVerifier
func NewJWTVerifier(mgr *jwt.Manager) *JWTVerifier {
	return &JWTVerifier{mgr: mgr}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims, err := v.mgr.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims.OwnerID(), nil
}

// ── Google ID Token ──

// GoogleVerifier Google 签发的 ID Token，用户标识取 sub
type GoogleVerifier struct {
	verifier  googleAuthIDTokenVerifier.Verifier
	audiences []string
}

// NewGoogleVerifier 创建 GoogleVerifier
// audiences 为允许的 OAuth Client ID 列表
func NewGoogleVerifier(audiences []string) *GoogleVerifier {
	return &GoogleVerifier{audiences: audiences}
}

func (v *GoogleVerifier) Verify(_ context.Context, token string) (string, error) {
	if err := v.verifier.VerifyIDToken(token, v.audiences); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claimSet.Sub == "" {
		return "", fmt.Errorf("%w: 缺少 sub 声明", ErrUnauthenticated)
	}
	return claimSet.Sub, nil
}
