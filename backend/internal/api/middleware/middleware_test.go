package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	owner string
	err   error
	got   string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	f.got = token
	return f.owner, f.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Auth ──

func TestAuth_InjectsUserID(t *testing.T) {
	v := &fakeVerifier{owner: "owner-a"}
	r := gin.New()
	r.GET("/me", Auth(v), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	w := serve(r, req)

	if w.Code != http.StatusOK || w.Body.String() != "owner-a" {
		t.Errorf("unexpected result: %d %s", w.Code, w.Body.String())
	}
	if v.got != "tok-123" {
		t.Errorf("token not forwarded: %q", v.got)
	}
}

func TestAuth_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Basic abc", nil},
		{"empty token", "Bearer   ", nil},
		{"verifier error", "Bearer tok", errors.New("expired")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := gin.New()
			r.GET("/me", Auth(&fakeVerifier{owner: "owner-a", err: tt.err}), func(c *gin.Context) {
				called = true
			})

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if called {
				t.Error("handler should not run")
			}
		})
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	var scoped *zap.Logger
	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		scoped = applogger.FromContext(c.Request.Context(), nil)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := serve(r, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("expected echoed id, got %q", got)
	}
	if scoped == nil {
		t.Error("scoped logger should be injected")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	w = serve(r, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("oversized id should be replaced by uuid, got %q", got)
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest("POST", "/", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest("POST", "/", strings.NewReader("0123")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ── RateLimit ──

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, 0, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := serve(r, httptest.NewRequest("GET", "/", nil)); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin should not be allowed, got %q", got)
	}
}
